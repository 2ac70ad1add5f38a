package content

import "slices"

// Kind describes one owner table whose rows carry base-language values inline
// and per-language overlays in the translations table.
type Kind struct {
	Name  string
	Table string

	// Fields are translatable. Their base-language values are columns on the
	// owner row; other languages live in the translations table.
	Fields []string
	// Required fields must carry a non-empty base-language value.
	Required []string

	// Attributes are writable, non-translated columns.
	Attributes         []string
	RequiredAttributes []string

	Slug     *SlugRule
	Parent   *Parent
	Children *Children

	Images        bool
	RequireImages bool

	OrderBy []string
}

// SlugRule derives a URL identifier from a translatable field. The base
// language slug is stored in Column, other languages as translation rows whose
// field name is Column.
type SlugRule struct {
	Source string
	Column string
}

// Parent is a referenced owner that keeps a denormalized count of its children.
type Parent struct {
	Table   string
	Column  string
	Counter string
}

// Children references rows of another table pointing at this kind.
type Children struct {
	Table  string
	Column string
}

var Projects = &Kind{
	Name:               "project",
	Table:              "projects",
	Fields:             []string{"title", "short_description", "extra_description"},
	Required:           []string{"title"},
	Attributes:         []string{"creation_date", "country", "category_id"},
	RequiredAttributes: []string{"category_id"},
	Parent: &Parent{
		Table:   "categories",
		Column:  "category_id",
		Counter: "project_count",
	},
	Images:        true,
	RequireImages: true,
	OrderBy:       []string{"created_at DESC", "id ASC"},
}

var Categories = &Kind{
	Name:               "category",
	Table:              "categories",
	Fields:             []string{"name", "description"},
	Required:           []string{"name"},
	Attributes:         []string{"icon_svg_url"},
	RequiredAttributes: []string{"icon_svg_url"},
	Slug: &SlugRule{
		Source: "name",
		Column: "slug",
	},
	Children: &Children{
		Table:  "projects",
		Column: "category_id",
	},
	OrderBy: []string{"name ASC", "id ASC"},
}

var Sections = &Kind{
	Name:               "section",
	Table:              "content_sections",
	Fields:             []string{"section_title", "content"},
	Required:           []string{"section_title"},
	Attributes:         []string{"section_key", "display_order"},
	RequiredAttributes: []string{"section_key"},
	OrderBy:            []string{"section_key ASC", "display_order ASC", "created_at ASC", "id ASC"},
}

func (k *Kind) HasField(field string) bool {
	return slices.Contains(k.Fields, field)
}

func (k *Kind) HasAttribute(attribute string) bool {
	return slices.Contains(k.Attributes, attribute)
}

// DocumentFields are the language-resolved fields of a document: the
// translatable fields plus the derived slug.
func (k *Kind) DocumentFields() []string {
	if k.Slug == nil {
		return k.Fields
	}

	fields := make([]string, 0, len(k.Fields)+1)
	fields = append(fields, k.Fields...)
	return append(fields, k.Slug.Column)
}
