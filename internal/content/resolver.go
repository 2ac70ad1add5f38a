package content

import (
	"context"
	"fmt"

	"portfolio/pkg/types"
)

// Resolver reads owner rows through the gateway and folds them into documents.
type Resolver struct {
	reader    Reader
	languages Languages
}

func NewResolver(reader Reader, languages Languages) *Resolver {
	return &Resolver{reader: reader, languages: languages}
}

func (r *Resolver) Languages() Languages {
	return r.languages
}

// List returns the documents matching query, or an empty slice.
func (r *Resolver) List(ctx context.Context, kind *Kind, query Query, view View) ([]*Document, error) {
	rows, err := r.reader.Owners(ctx, kind, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s rows: %w", kind.Name, err)
	}
	if len(rows) == 0 {
		return []*Document{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID())
	}

	var translations []*types.Translation
	switch language := r.languages.Resolve(view.Language); {
	case view.Privileged:
		translations, err = r.reader.Translations(ctx, kind, ids, "")
	case language != BaseLanguage:
		translations, err = r.reader.Translations(ctx, kind, ids, language)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s translations: %w", kind.Name, err)
	}

	var images []*types.ProjectImage
	if kind.Images {
		images, err = r.reader.Images(ctx, ids, view.MainImageOnly)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s images: %w", kind.Name, err)
		}
	}

	return Fold(kind, rows, translations, images, view, r.languages), nil
}

// Lookup returns the first document matching query, or ErrNotFound.
func (r *Resolver) Lookup(ctx context.Context, kind *Kind, query Query, view View) (*Document, error) {
	query.Limit = 1
	query.Offset = 0

	docs, err := r.List(ctx, kind, query, view)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}

	return docs[0], nil
}
