package content

import "portfolio/pkg/types"

// Index groups translation rows by owner, language and field so a whole
// result set is folded with one pass over the rows.
type Index map[string]map[string]map[string]string

// NewIndex indexes the rows belonging to table. Rows of other tables are
// skipped.
func NewIndex(table string, rows []*types.Translation) Index {
	index := make(Index)
	for _, row := range rows {
		if row == nil || row.TableName != table {
			continue
		}

		languages, ok := index[row.RowID]
		if !ok {
			languages = make(map[string]map[string]string)
			index[row.RowID] = languages
		}

		fields, ok := languages[row.LanguageCode]
		if !ok {
			fields = make(map[string]string)
			languages[row.LanguageCode] = fields
		}

		fields[row.FieldName] = row.TranslatedText
	}
	return index
}

func (ix Index) Lookup(ownerID, language, field string) (string, bool) {
	text, ok := ix[ownerID][language][field]
	return text, ok
}

// Resolve returns fields in one language, using the base value wherever the
// language has no non-empty translation.
func (ix Index) Resolve(ownerID, language string, base map[string]string, fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		out[field] = base[field]
		if language == BaseLanguage {
			continue
		}
		if text, ok := ix.Lookup(ownerID, language, field); ok && text != "" {
			out[field] = text
		}
	}
	return out
}

// All returns every supported language. Each starts with empty strings, is
// overwritten by translation rows, and the base language always comes from
// the owner row.
func (ix Index) All(ownerID string, base map[string]string, fields []string, languages Languages) map[string]map[string]string {
	out := make(map[string]map[string]string, len(languages))
	for _, language := range languages {
		entry := make(map[string]string, len(fields))
		for _, field := range fields {
			if language == BaseLanguage {
				entry[field] = base[field]
				continue
			}
			entry[field] = ix[ownerID][language][field]
		}
		out[language] = entry
	}
	return out
}
