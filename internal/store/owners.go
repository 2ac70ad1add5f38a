package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio/internal/content"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const translationTableName = "translations"

func (s *queries) Exists(ctx context.Context, table, id string) (bool, error) {
	query, args, err := psql().
		Select("1").
		From(table).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate %s exists query: %w", table, err)
	}

	var one int
	err = s.q.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s row: %w", table, err)
	}

	return true, nil
}

func (s *queries) Owners(ctx context.Context, kind *content.Kind, q content.Query) ([]content.Row, error) {
	query, args, err := ownersQuery(kind, q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s query: %w", kind.Table, err)
	}

	return s.collectOwners(ctx, kind, query, args)
}

func (s *queries) LockOwner(ctx context.Context, kind *content.Kind, id string) (content.Row, error) {
	query, args, err := psql().
		Select("*").
		From(kind.Table).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s lock query: %w", kind.Table, err)
	}

	rows, err := s.collectOwners(ctx, kind, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, content.ErrNotFound
	}

	return rows[0], nil
}

func (s *queries) collectOwners(ctx context.Context, kind *content.Kind, query string, args []any) ([]content.Row, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", kind.Table, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", kind.Table, err)
	}

	out := make([]content.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, content.Row(m))
	}
	return out, nil
}

// ownersQuery selects whole owner rows so every column reaches the document
// as an attribute.
func ownersQuery(kind *content.Kind, q content.Query) sq.SelectBuilder {
	builder := psql().Select("*").From(kind.Table)

	if q.ID != "" {
		builder = builder.Where(sq.Eq{"id": q.ID})
	}
	if len(q.IDs) > 0 {
		builder = builder.Where(sq.Eq{"id": q.IDs})
	}
	if len(q.Where) > 0 {
		builder = builder.Where(sq.Eq(q.Where))
	}

	if q.Slug != "" && kind.Slug != nil {
		builder = builder.Where(sq.Or{
			sq.Eq{kind.Slug.Column: q.Slug},
			sq.Expr(
				"id IN (SELECT row_id FROM "+translationTableName+" WHERE table_name = ? AND field_name = ? AND translated_text = ?)",
				kind.Table, kind.Slug.Column, q.Slug,
			),
		})
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		matches := sq.Or{}
		for _, field := range kind.Fields {
			matches = append(matches, sq.ILike{field: pattern})
		}
		matches = append(matches, sq.Expr(
			"id IN (SELECT row_id FROM "+translationTableName+" WHERE table_name = ? AND translated_text ILIKE ?)",
			kind.Table, pattern,
		))
		builder = builder.Where(matches)
	}

	if len(kind.OrderBy) > 0 {
		builder = builder.OrderBy(kind.OrderBy...)
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}
	if q.Offset > 0 {
		builder = builder.Offset(q.Offset)
	}

	return builder
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *queries) InsertOwner(ctx context.Context, kind *content.Kind, values map[string]any) error {
	query, args, err := psql().
		Insert(kind.Table).
		SetMap(values).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate %s insert query: %w", kind.Table, err)
	}

	_, err = s.q.Exec(ctx, query, args...)
	return classify(err, "insert "+kind.Name)
}

func (s *queries) UpdateOwner(ctx context.Context, kind *content.Kind, id string, values map[string]any) error {
	query, args, err := psql().
		Update(kind.Table).
		SetMap(values).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate %s update query: %w", kind.Table, err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return classify(err, "update "+kind.Name)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (s *queries) DeleteOwner(ctx context.Context, kind *content.Kind, id string) error {
	query, args, err := psql().
		Delete(kind.Table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate %s delete query: %w", kind.Table, err)
	}

	tag, err := s.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}

	return nil
}

func (s *queries) CountChildren(ctx context.Context, children *content.Children, id string) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(children.Table).
		Where(sq.Eq{children.Column: id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate %s count query: %w", children.Table, err)
	}

	var count int
	if err := s.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", children.Table, err)
	}

	return count, nil
}

func (s *queries) AdjustCounter(ctx context.Context, parent *content.Parent, parentID string, delta int) error {
	query, args, err := adjustCounterQuery(parent, parentID, delta).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate %s counter query: %w", parent.Table, err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to adjust %s.%s: %w", parent.Table, parent.Counter, err)
	}

	return nil
}

func adjustCounterQuery(parent *content.Parent, parentID string, delta int) sq.UpdateBuilder {
	return psql().
		Update(parent.Table).
		Set(parent.Counter, sq.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", parent.Counter), delta)).
		Where(sq.Eq{"id": parentID})
}

func (s *queries) SlugsInUse(ctx context.Context, kind *content.Kind, slugs []string, excludeID string) ([]string, error) {
	if kind.Slug == nil || len(slugs) == 0 {
		return nil, nil
	}

	taken := make(map[string]bool, len(slugs))
	for _, builder := range slugQueries(kind, slugs, excludeID) {
		query, args, err := builder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s slug query: %w", kind.Table, err)
		}

		rows, err := s.q.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s slugs: %w", kind.Table, err)
		}
		found, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s slugs: %w", kind.Table, err)
		}
		for _, slug := range found {
			taken[slug] = true
		}
	}

	var out []string
	for _, slug := range slugs {
		if taken[slug] {
			out = append(out, slug)
		}
	}
	return out, nil
}

// slugQueries looks for candidates among base slugs and per-language slug
// translations.
func slugQueries(kind *content.Kind, slugs []string, excludeID string) []sq.SelectBuilder {
	base := psql().
		Select(kind.Slug.Column).
		From(kind.Table).
		Where(sq.Eq{kind.Slug.Column: slugs})

	translated := psql().
		Select("translated_text").
		From(translationTableName).
		Where(sq.Eq{
			"table_name":      kind.Table,
			"field_name":      kind.Slug.Column,
			"translated_text": slugs,
		})

	if excludeID != "" {
		base = base.Where(sq.NotEq{"id": excludeID})
		translated = translated.Where(sq.NotEq{"row_id": excludeID})
	}

	return []sq.SelectBuilder{base, translated}
}
