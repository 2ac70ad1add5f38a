package types

import "time"

type ProjectImage struct {
	ID           int64     `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"-"`
	ImageURL     string    `db:"image_url" json:"url"`
	IsMain       bool      `db:"is_main" json:"is_main"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}
