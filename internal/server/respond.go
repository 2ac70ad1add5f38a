package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/internal/validation"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Message   string                  `json:"message"`
	Error     string                  `json:"error,omitempty"`
	Field     string                  `json:"field,omitempty"`
	Conflicts []string                `json:"conflicts,omitempty"`
	Errors    []validation.FieldError `json:"errors,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps err onto a status code. resource names the thing being
// handled in the response message.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var (
		requestErr  *validation.RequestValidationError
		validateErr *content.ValidationError
		conflictErr *content.ConflictError
		uploadErr   *content.UploadError
	)

	switch {
	case errors.As(err, &requestErr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: requestErr.Fields})
	case errors.As(err, &validateErr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Message: validateErr.Error(), Field: validateErr.Field})
	case errors.Is(err, content.ErrNotFound):
		s.writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s not found", capitalize(resource)))
	case errors.As(err, &conflictErr):
		s.writeJSON(w, http.StatusConflict, errorResponse{Message: conflictErr.Message, Conflicts: conflictErr.Values})
	case errors.As(err, &uploadErr):
		s.logger.WithError(err).WithField("image", uploadErr.Name).Error("failed to upload image")
		s.writeJSON(w, http.StatusBadGateway, errorResponse{
			Message: fmt.Sprintf("Failed to upload %s images", resource),
			Error:   s.detail(err),
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: fmt.Sprintf("Error processing %s", resource),
			Error:   s.detail(err),
		})
	}
}

func (s *Service) writeUnauthorized(w http.ResponseWriter, err error) {
	resp := errorResponse{Message: "Authentication required"}
	if !errors.Is(err, errNoToken) {
		resp.Message = "Invalid token"
		resp.Error = s.detail(err)
	}
	s.writeJSON(w, http.StatusUnauthorized, resp)
}

// detail exposes internal causes in development only.
func (s *Service) detail(err error) string {
	if err == nil || !s.config.IsDevelopment() {
		return ""
	}
	return err.Error()
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &content.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
