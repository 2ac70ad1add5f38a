package server

import (
	"context"
	"net/http"
	"strings"
	"unicode"

	"portfolio/internal/content"

	"github.com/goccy/go-json"
)

const contactInfoKey = "contact_info"

type sectionView struct {
	ID           string `json:"id"`
	SectionTitle string `json:"section_title"`
	Content      string `json:"content"`
}

// sectionItem is one entry of a content-sections batch. An item with the
// delete action removes IDs, an item with an ID updates it, anything else
// creates a section.
type sectionItem struct {
	Action       string                       `json:"action"`
	IDs          []string                     `json:"ids"`
	ID           string                       `json:"id"`
	Type         *string                      `json:"type"`
	SectionTitle *string                      `json:"section_title"`
	Content      *string                      `json:"content"`
	DisplayOrder *int                         `json:"display_order"`
	Translations map[string]map[string]string `json:"translations"`
}

func (s *Service) handleGetAboutUs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.reader.List(r.Context(), content.Sections, content.Query{}, content.View{Language: r.URL.Query().Get("language_code")})
	if err != nil {
		s.writeError(w, r, err, "section")
		return
	}

	grouped := make(map[string]any)
	for key, items := range groupSections(docs) {
		views := make([]sectionView, 0, len(items))
		for _, doc := range items {
			views = append(views, sectionView{
				ID:           doc.ID,
				SectionTitle: doc.Field("section_title"),
				Content:      doc.Field("content"),
			})
		}
		grouped[key] = views
	}

	if views, ok := grouped[contactInfoKey].([]sectionView); ok {
		grouped[contactInfoKey] = foldContactInfo(views)
	}

	s.writeJSON(w, http.StatusOK, grouped)
}

func (s *Service) handleGetAboutUsAdmin(w http.ResponseWriter, r *http.Request) {
	docs, err := s.reader.List(r.Context(), content.Sections, content.Query{}, content.View{Privileged: true})
	if err != nil {
		s.writeError(w, r, err, "section")
		return
	}

	s.writeJSON(w, http.StatusOK, groupSections(docs))
}

func (s *Service) handlePutContentSections(w http.ResponseWriter, r *http.Request) {
	var items []sectionItem
	if err := decodeJSON(r, &items); err != nil {
		s.writeError(w, r, err, "section")
		return
	}

	changes := sectionChanges(items)
	if len(changes) > 0 {
		if _, err := s.writer.Apply(context.WithoutCancel(r.Context()), content.Sections, changes); err != nil {
			s.writeError(w, r, err, "section")
			return
		}
	}

	s.writeMessage(w, http.StatusOK, "Operation completed successfully.")
}

func sectionChanges(items []sectionItem) []content.Change {
	changes := make([]content.Change, 0, len(items))
	for _, item := range items {
		if item.Action == "delete" {
			for _, id := range item.IDs {
				changes = append(changes, content.Change{Op: content.OpDelete, ID: id})
			}
			continue
		}

		cs := content.ChangeSet{
			Translations: make(map[string]map[string]string, len(item.Translations)+1),
			Attributes:   make(map[string]any),
		}
		for language, fields := range item.Translations {
			cs.Translations[language] = fields
		}
		if item.SectionTitle != nil || item.Content != nil {
			base := cs.Translations[content.BaseLanguage]
			if base == nil {
				base = make(map[string]string)
				cs.Translations[content.BaseLanguage] = base
			}
			if item.SectionTitle != nil {
				base["section_title"] = *item.SectionTitle
			}
			if item.Content != nil {
				base["content"] = *item.Content
			}
		}
		if item.Type != nil {
			cs.Attributes["section_key"] = *item.Type
		}
		if item.DisplayOrder != nil {
			cs.Attributes["display_order"] = *item.DisplayOrder
		}

		if item.ID != "" {
			changes = append(changes, content.Change{Op: content.OpUpdate, ID: item.ID, Set: cs})
		} else {
			changes = append(changes, content.Change{Op: content.OpCreate, Set: cs})
		}
	}
	return changes
}

// groupSections groups documents by section key keeping their order.
func groupSections(docs []*content.Document) map[string][]*content.Document {
	grouped := make(map[string][]*content.Document)
	for _, doc := range docs {
		key, _ := doc.Attributes["section_key"].(string)
		grouped[key] = append(grouped[key], doc)
	}
	return grouped
}

// foldContactInfo keys contact sections by their title without whitespace,
// lowercased, decoding contents that hold JSON.
func foldContactInfo(views []sectionView) map[string]any {
	out := make(map[string]any, len(views))
	for _, view := range views {
		key := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, strings.ToLower(view.SectionTitle))

		var value any
		if err := json.Unmarshal([]byte(view.Content), &value); err != nil {
			value = view.Content
		}
		out[key] = value
	}
	return out
}
