package store

import (
	"context"
	"fmt"

	"portfolio/internal/content"
	"portfolio/internal/utils"
	"portfolio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

var translationColumns = utils.StructTagValues(types.Translation{})

func (s *queries) Translations(ctx context.Context, kind *content.Kind, ownerIDs []string, language string) ([]*types.Translation, error) {
	if len(ownerIDs) == 0 {
		return []*types.Translation{}, nil
	}

	where := sq.Eq{"table_name": kind.Table, "row_id": ownerIDs}
	if language != "" {
		where["language_code"] = language
	}

	query, args, err := psql().
		Select(translationColumns...).
		From(translationTableName).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate translations query: %w", err)
	}

	var translations []*types.Translation
	err = pgxscan.Select(ctx, s.q, &translations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s translations: %w", kind.Table, err)
	}

	return translations, nil
}

func (s *queries) UpsertTranslations(ctx context.Context, rows []*types.Translation) error {
	if len(rows) == 0 {
		return nil
	}

	query, args, err := upsertTranslationsQuery(rows).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate translations upsert query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return classify(err, "upsert translations")
	}

	return nil
}

type translationKey struct {
	table, rowID, language, field string
}

// upsertTranslationsQuery writes all rows in one statement. A key repeated in
// rows keeps its last text since Postgres rejects a statement that updates the
// same row twice.
func upsertTranslationsQuery(rows []*types.Translation) sq.InsertBuilder {
	last := make(map[translationKey]int, len(rows))
	for i, row := range rows {
		last[translationKey{row.TableName, row.RowID, row.LanguageCode, row.FieldName}] = i
	}

	builder := psql().
		Insert(translationTableName).
		Columns(translationColumns...)

	for i, row := range rows {
		if last[translationKey{row.TableName, row.RowID, row.LanguageCode, row.FieldName}] != i {
			continue
		}
		builder = builder.Values(row.ID, row.TableName, row.RowID, row.LanguageCode, row.FieldName, row.TranslatedText)
	}

	return builder.Suffix("ON CONFLICT (table_name, row_id, language_code, field_name) DO UPDATE SET translated_text = EXCLUDED.translated_text")
}

func (s *queries) DeleteTranslation(ctx context.Context, table, ownerID, language, field string) error {
	query, args, err := psql().
		Delete(translationTableName).
		Where(sq.Eq{
			"table_name":    table,
			"row_id":        ownerID,
			"language_code": language,
			"field_name":    field,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate translation delete query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s translation: %w", language, err)
	}

	return nil
}

func (s *queries) DeleteTranslations(ctx context.Context, table, ownerID string) error {
	query, args, err := psql().
		Delete(translationTableName).
		Where(sq.Eq{"table_name": table, "row_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate translations delete query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s translations: %w", table, err)
	}

	return nil
}
