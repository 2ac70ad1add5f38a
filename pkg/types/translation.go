package types

// Translation overlays one field of one owner row for one non-base language.
// (TableName, RowID, LanguageCode, FieldName) is unique.
type Translation struct {
	ID             string `db:"id" json:"id"`
	TableName      string `db:"table_name" json:"tableName"`
	RowID          string `db:"row_id" json:"rowId"`
	LanguageCode   string `db:"language_code" json:"languageCode"`
	FieldName      string `db:"field_name" json:"fieldName"`
	TranslatedText string `db:"translated_text" json:"translatedText"`
}
