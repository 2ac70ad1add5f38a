package content

import (
	"github.com/goccy/go-json"
)

type Image struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	IsMain bool   `json:"is_main"`
}

// Document is a resolved owner row. Public documents carry Fields resolved to
// one language; privileged documents carry Translations for every language.
type Document struct {
	ID           string
	Fields       map[string]string
	Translations map[string]map[string]string
	Attributes   map[string]any
	// Images is nil for kinds without images.
	Images   []Image
	Embedded map[string]*Document
}

func (d *Document) Embed(key string, doc *Document) {
	if d.Embedded == nil {
		d.Embedded = make(map[string]*Document)
	}
	d.Embedded[key] = doc
}

// Field returns the resolved value of a field for public documents and the
// base value for privileged ones.
func (d *Document) Field(name string) string {
	if d.Fields != nil {
		return d.Fields[name]
	}
	return d.Translations[BaseLanguage][name]
}

// MarshalJSON flattens the document into a single object:
// {id, ...fields, ...attributes, translations?, images?, ...embedded}.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Attributes)+len(d.Fields)+len(d.Embedded)+3)
	for k, v := range d.Attributes {
		out[k] = v
	}
	for k, v := range d.Fields {
		out[k] = v
	}
	if d.Translations != nil {
		out["translations"] = d.Translations
	}
	if d.Images != nil {
		out["images"] = d.Images
	}
	for k, v := range d.Embedded {
		out[k] = v
	}
	out["id"] = d.ID

	return json.Marshal(out)
}
