package server

import (
	"net/http"

	"portfolio/internal/content"
)

func (s *Service) handleGetLanguages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"languages": s.reader.Languages(),
		"base":      content.BaseLanguage,
	})
}
