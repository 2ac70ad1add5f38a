package store

import (
	"context"
	"fmt"

	"portfolio/internal/utils"
	"portfolio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const imageTableName = "project_images"

var imageColumns = utils.StructTagValues(types.ProjectImage{})

func (s *queries) Images(ctx context.Context, ownerIDs []string, mainOnly bool) ([]*types.ProjectImage, error) {
	if len(ownerIDs) == 0 {
		return []*types.ProjectImage{}, nil
	}

	where := sq.Eq{"project_id": ownerIDs}
	if mainOnly {
		where["is_main"] = true
	}

	query, args, err := psql().
		Select(imageColumns...).
		From(imageTableName).
		Where(where).
		OrderBy("display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate images query: %w", err)
	}

	var images []*types.ProjectImage
	err = pgxscan.Select(ctx, s.q, &images, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch images: %w", err)
	}

	return images, nil
}

func (s *queries) NextImageOrder(ctx context.Context, ownerID string) (int, error) {
	query, args, err := psql().
		Select("COALESCE(MAX(display_order) + 1, 0)").
		From(imageTableName).
		Where(sq.Eq{"project_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate image order query: %w", err)
	}

	var next int
	if err := s.q.QueryRow(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to fetch next image order: %w", err)
	}

	return next, nil
}

func (s *queries) InsertImages(ctx context.Context, images []*types.ProjectImage) error {
	if len(images) == 0 {
		return nil
	}

	builder := psql().
		Insert(imageTableName).
		Columns("project_id", "image_url", "is_main", "display_order", "created_at")

	for _, image := range images {
		builder = builder.Values(image.ProjectID, image.ImageURL, image.IsMain, image.DisplayOrder, image.CreatedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate images insert query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return classify(err, "insert images")
	}

	return nil
}

func (s *queries) ClearMainImage(ctx context.Context, ownerID string) error {
	query, args, err := psql().
		Update(imageTableName).
		Set("is_main", false).
		Where(sq.Eq{"project_id": ownerID, "is_main": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clear main image query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear main image: %w", err)
	}

	return nil
}

func (s *queries) SetMainImage(ctx context.Context, ownerID string, imageID int64) (bool, error) {
	query, args, err := psql().
		Update(imageTableName).
		Set("is_main", true).
		Where(sq.Eq{"id": imageID, "project_id": ownerID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate set main image query: %w", err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return false, classify(err, "set main image")
	}

	return tag.RowsAffected() > 0, nil
}

func (s *queries) DeleteImages(ctx context.Context, ownerID string, ids []int64) ([]string, error) {
	query, args, err := deleteImagesQuery(ownerID, ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate images delete query: %w", err)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete images: %w", err)
	}

	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan deleted image urls: %w", err)
	}

	return urls, nil
}

// deleteImagesQuery is scoped to the owner so ids of other projects' images
// are ignored. Nil ids removes every image of the owner.
func deleteImagesQuery(ownerID string, ids []int64) sq.DeleteBuilder {
	where := sq.Eq{"project_id": ownerID}
	if ids != nil {
		where["id"] = ids
	}

	return psql().
		Delete(imageTableName).
		Where(where).
		Suffix("RETURNING image_url")
}
