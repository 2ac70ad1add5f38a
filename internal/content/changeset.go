package content

import (
	"maps"
	"slices"
	"strings"

	"portfolio/pkg/types"
)

type Op int

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// ChangeSet is a partial set of client-submitted changes. Anything absent is
// left untouched.
type ChangeSet struct {
	// Translations maps language -> field -> text. The base language entry
	// writes the owner row; other languages write translation rows, and an
	// empty text removes that language's translation on update.
	Translations map[string]map[string]string
	Attributes   map[string]any

	// MainImageID, when set, clears the main flag and moves it to that image.
	// Zero clears it without choosing a new one.
	MainImageID *int64
	// MainImageIndex flags one of NewImages as main.
	MainImageIndex *int
	DeleteImages   []int64
	NewImages      []types.Upload
}

type Change struct {
	Op  Op
	ID  string
	Set ChangeSet
}

func validateChange(kind *Kind, languages Languages, change *Change) error {
	switch change.Op {
	case OpCreate:
		return validateCreate(kind, languages, &change.Set)
	case OpUpdate:
		if change.ID == "" {
			return invalid("id", "is required")
		}
		return validateUpdate(kind, languages, &change.Set)
	case OpDelete:
		if change.ID == "" {
			return invalid("id", "is required")
		}
		return nil
	}
	return invalid("op", "unsupported operation %d", change.Op)
}

func validateCreate(kind *Kind, languages Languages, cs *ChangeSet) error {
	if err := validateShape(kind, languages, cs); err != nil {
		return err
	}

	base, ok := cs.Translations[BaseLanguage]
	if !ok {
		return invalid("translations."+BaseLanguage, "is required")
	}
	for _, field := range kind.Required {
		if strings.TrimSpace(base[field]) == "" {
			return invalid("translations."+BaseLanguage+"."+field, "is required")
		}
	}

	for _, attribute := range kind.RequiredAttributes {
		if isBlank(cs.Attributes[attribute]) {
			return invalid(attribute, "is required")
		}
	}

	if len(cs.DeleteImages) > 0 || cs.MainImageID != nil {
		return invalid("images", "cannot reference existing images on create")
	}
	if kind.RequireImages && len(cs.NewImages) == 0 {
		return invalid("images", "at least one image is required")
	}

	return nil
}

func validateUpdate(kind *Kind, languages Languages, cs *ChangeSet) error {
	if err := validateShape(kind, languages, cs); err != nil {
		return err
	}

	if base, ok := cs.Translations[BaseLanguage]; ok {
		for _, field := range kind.Required {
			if text, present := base[field]; present && strings.TrimSpace(text) == "" {
				return invalid("translations."+BaseLanguage+"."+field, "cannot be empty")
			}
		}
	}

	for _, attribute := range kind.RequiredAttributes {
		if value, present := cs.Attributes[attribute]; present && isBlank(value) {
			return invalid(attribute, "cannot be empty")
		}
	}

	if cs.MainImageID != nil && cs.MainImageIndex != nil {
		return invalid("mainImageId", "cannot be combined with mainImageIndex")
	}

	return nil
}

func validateShape(kind *Kind, languages Languages, cs *ChangeSet) error {
	for _, language := range slices.Sorted(maps.Keys(cs.Translations)) {
		if !languages.Supports(language) || language != normalizeLanguage(language) {
			return invalid("translations."+language, "unsupported language")
		}
		for _, field := range slices.Sorted(maps.Keys(cs.Translations[language])) {
			if !kind.HasField(field) {
				return invalid("translations."+language+"."+field, "unknown field")
			}
		}
	}

	for _, attribute := range slices.Sorted(maps.Keys(cs.Attributes)) {
		if !kind.HasAttribute(attribute) {
			return invalid(attribute, "unknown attribute")
		}
	}

	if !kind.Images && (len(cs.NewImages) > 0 || len(cs.DeleteImages) > 0 || cs.MainImageID != nil || cs.MainImageIndex != nil) {
		return invalid("images", "%s does not have images", kind.Name)
	}

	if cs.MainImageIndex != nil {
		if idx := *cs.MainImageIndex; idx < 0 || idx >= len(cs.NewImages) {
			return invalid("mainImageIndex", "must reference one of the uploaded images")
		}
	}

	for i, file := range cs.NewImages {
		if len(file.Data) == 0 {
			return invalid("images", "image %d is empty", i)
		}
	}

	return nil
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	}
	return false
}
