package content

import (
	"context"

	"portfolio/pkg/types"
)

// Row is one owner row keyed by column name.
type Row map[string]any

func (r Row) ID() string {
	return r.Text("id")
}

// Text returns the column as a string, or "" when it is NULL or not text.
func (r Row) Text(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

// Query selects owner rows. Zero values are ignored.
type Query struct {
	ID  string
	IDs []string
	// Slug matches the base slug column or any per-language slug.
	Slug string
	// Where holds column equality filters.
	Where map[string]any
	// Search matches any translatable field in any language.
	Search string
	Limit  uint64
	Offset uint64
}

// Reader is the read side of the storage gateway.
type Reader interface {
	Exists(ctx context.Context, table, id string) (bool, error)
	Owners(ctx context.Context, kind *Kind, query Query) ([]Row, error)
	// Translations returns the rows overlaying the given owners. An empty
	// language returns every language.
	Translations(ctx context.Context, kind *Kind, ownerIDs []string, language string) ([]*types.Translation, error)
	Images(ctx context.Context, ownerIDs []string, mainOnly bool) ([]*types.ProjectImage, error)
}

// Tx is the set of row operations issued inside one transaction.
type Tx interface {
	Exists(ctx context.Context, table, id string) (bool, error)
	// LockOwner returns the owner row locked for the rest of the transaction,
	// or ErrNotFound.
	LockOwner(ctx context.Context, kind *Kind, id string) (Row, error)
	InsertOwner(ctx context.Context, kind *Kind, values map[string]any) error
	UpdateOwner(ctx context.Context, kind *Kind, id string, values map[string]any) error
	DeleteOwner(ctx context.Context, kind *Kind, id string) error
	CountChildren(ctx context.Context, children *Children, id string) (int, error)
	// AdjustCounter adds delta to the parent's counter, never going below zero.
	AdjustCounter(ctx context.Context, parent *Parent, parentID string, delta int) error
	// SlugsInUse returns which of the candidate slugs are already taken by
	// any row other than excludeID, in any language.
	SlugsInUse(ctx context.Context, kind *Kind, slugs []string, excludeID string) ([]string, error)

	// UpsertTranslations writes rows keyed by (table, row, language, field),
	// replacing the text of rows that already exist.
	UpsertTranslations(ctx context.Context, rows []*types.Translation) error
	DeleteTranslation(ctx context.Context, table, ownerID, language, field string) error
	DeleteTranslations(ctx context.Context, table, ownerID string) error

	NextImageOrder(ctx context.Context, ownerID string) (int, error)
	InsertImages(ctx context.Context, images []*types.ProjectImage) error
	ClearMainImage(ctx context.Context, ownerID string) error
	SetMainImage(ctx context.Context, ownerID string, imageID int64) (bool, error)
	// DeleteImages removes the owner's images with the given ids, or all of
	// them when ids is nil, and returns the removed URLs.
	DeleteImages(ctx context.Context, ownerID string, ids []int64) ([]string, error)
}

// Gateway is the storage collaborator of the resolver and the reconciler.
type Gateway interface {
	Reader
	// InTx runs fn in one transaction, committing when it returns nil and
	// rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// MediaHost stores uploaded images and serves them by URL.
type MediaHost interface {
	Upload(ctx context.Context, file types.Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// Cleaner removes remote media in the background.
type Cleaner interface {
	Enqueue(urls ...string)
}
