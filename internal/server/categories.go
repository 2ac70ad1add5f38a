package server

import (
	"context"
	"net/http"
	"strconv"

	"portfolio/internal/content"
)

const categoryProjectsPageSize = 10

// categoryRequest accepts the base-language fields flat, next to an optional
// translations object for the other languages.
type categoryRequest struct {
	Name         *string                      `json:"name"`
	Description  *string                      `json:"description"`
	IconSVGURL   *string                      `json:"icon_svg_url"`
	Translations map[string]map[string]string `json:"translations"`
}

func (c *categoryRequest) changeSet() content.ChangeSet {
	cs := content.ChangeSet{
		Translations: make(map[string]map[string]string, len(c.Translations)+1),
		Attributes:   make(map[string]any),
	}
	for language, fields := range c.Translations {
		cs.Translations[language] = fields
	}

	base := cs.Translations[content.BaseLanguage]
	if base == nil && (c.Name != nil || c.Description != nil) {
		base = make(map[string]string)
		cs.Translations[content.BaseLanguage] = base
	}
	if c.Name != nil {
		base["name"] = *c.Name
	}
	if c.Description != nil {
		base["description"] = *c.Description
	}

	if c.IconSVGURL != nil {
		cs.Attributes["icon_svg_url"] = *c.IconSVGURL
	}

	return cs
}

func (s *Service) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	view := content.View{Language: r.URL.Query().Get("language_code")}
	if s.isPrivileged(r) {
		view = content.View{Privileged: true}
	}

	docs, err := s.reader.List(r.Context(), content.Categories, content.Query{}, view)
	if err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	view := content.View{Language: r.URL.Query().Get("language_code")}
	if s.isPrivileged(r) {
		view = content.View{Privileged: true}
	}

	doc, err := s.reader.Lookup(r.Context(), content.Categories, content.Query{Slug: r.PathValue("slug")}, view)
	if err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleGetCategoryProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	language := r.URL.Query().Get("language_code")

	offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	if err != nil {
		offset = 0
	}

	category, err := s.reader.Lookup(ctx, content.Categories, content.Query{Slug: r.PathValue("slug")}, content.View{Language: language})
	if err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	docs, err := s.reader.List(ctx, content.Projects, content.Query{
		Where:  map[string]any{"category_id": category.ID},
		Limit:  categoryProjectsPageSize,
		Offset: offset,
	}, content.View{Language: language, MainImageOnly: true})
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	id, err := s.writer.Create(context.WithoutCancel(r.Context()), content.Categories, req.changeSet())
	if err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Category created.",
		"id":      id,
	})
}

func (s *Service) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	id := r.PathValue("id")
	if err := s.writer.Update(context.WithoutCancel(r.Context()), content.Categories, id, req.changeSet()); err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	s.writeMessage(w, http.StatusOK, "Category updated.")
}

func (s *Service) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.writer.Delete(context.WithoutCancel(r.Context()), content.Categories, id); err != nil {
		s.writeError(w, r, err, "category")
		return
	}

	s.writeMessage(w, http.StatusOK, "Category deleted.")
}
