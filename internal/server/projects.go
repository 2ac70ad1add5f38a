package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"portfolio/internal/content"
)

func (s *Service) handleGetProject(w http.ResponseWriter, r *http.Request) {
	view := content.View{Language: r.URL.Query().Get("language_code")}
	if r.URL.Query().Get("view") == "admin" && s.isPrivileged(r) {
		view = content.View{Privileged: true}
	}

	doc, err := s.project(r.Context(), r.PathValue("id"), view)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleGetProjectAdmin(w http.ResponseWriter, r *http.Request) {
	doc, err := s.project(r.Context(), r.PathValue("id"), content.View{Privileged: true})
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusOK, doc)
}

// project resolves one project with its category embedded in the same view.
func (s *Service) project(ctx context.Context, id string, view content.View) (*content.Document, error) {
	doc, err := s.reader.Lookup(ctx, content.Projects, content.Query{ID: id}, view)
	if err != nil {
		return nil, err
	}

	categoryID, _ := doc.Attributes["category_id"].(string)
	if categoryID == "" {
		return doc, nil
	}

	category, err := s.reader.Lookup(ctx, content.Categories, content.Query{ID: categoryID}, view)
	switch {
	case err == nil:
		doc.Embed("category", category)
	case !errors.Is(err, content.ErrNotFound):
		return nil, err
	}

	return doc, nil
}

func (s *Service) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("query"))
	if search == "" {
		s.writeMessage(w, http.StatusBadRequest, "Please provide a search query.")
		return
	}

	docs, err := s.reader.List(r.Context(), content.Projects, content.Query{Search: search}, content.View{Privileged: true})
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	f, uploads, err := s.parseProjectForm(w, r)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	cs, err := f.changeSet(uploads)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}
	if cs.MainImageIndex == nil && len(uploads) > 0 {
		first := 0
		cs.MainImageIndex = &first
	}

	id, err := s.writer.Create(context.WithoutCancel(r.Context()), content.Projects, cs)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"message":   "Project created successfully",
		"projectId": id,
	})
}

func (s *Service) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	f, uploads, err := s.parseProjectForm(w, r)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	cs, err := f.changeSet(uploads)
	if err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	if err := s.writer.Update(context.WithoutCancel(r.Context()), content.Projects, id, cs); err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Project updated successfully",
		"projectId": id,
	})
}

func (s *Service) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.writer.Delete(context.WithoutCancel(r.Context()), content.Projects, id); err != nil {
		s.writeError(w, r, err, "project")
		return
	}

	s.writeMessage(w, http.StatusOK, "Project deleted successfully")
}
