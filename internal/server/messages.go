package server

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"portfolio/internal/validation"
	"portfolio/pkg/types"
)

const messagesPageSize = 10

type messageRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=50"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (s *Service) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "message")
		return
	}

	req.Name = sanitize(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Message = sanitize(req.Message)

	if err := validation.ValidateStruct(&req); err != nil {
		s.writeError(w, r, err, "message")
		return
	}

	message := &types.Message{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := s.messages.CreateMessage(context.WithoutCancel(r.Context()), message); err != nil {
		s.writeError(w, r, err, "message")
		return
	}

	s.writeMessage(w, http.StatusCreated, "Message sent successfully")
}

func (s *Service) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	if err != nil {
		offset = 0
	}

	messages, err := s.messages.Messages(r.Context(), messagesPageSize, offset)
	if err != nil {
		s.writeError(w, r, err, "message")
		return
	}

	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Service) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeMessage(w, http.StatusNotFound, "Message not found")
		return
	}

	if err := s.messages.DeleteMessage(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrMessageNotFound) {
			s.writeMessage(w, http.StatusNotFound, "Message not found")
			return
		}
		s.writeError(w, r, err, "message")
		return
	}

	s.writeMessage(w, http.StatusOK, "Message deleted successfully")
}

func (s *Service) handlePostContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "contact message")
		return
	}

	req.Name = sanitize(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = sanitize(req.Phone)
	req.Message = sanitize(req.Message)

	if err := validation.ValidateStruct(&req); err != nil {
		s.writeError(w, r, err, "contact message")
		return
	}

	message := &types.ContactMessage{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := s.messages.CreateContactMessage(context.WithoutCancel(r.Context()), message); err != nil {
		s.writeError(w, r, err, "contact message")
		return
	}

	s.writeMessage(w, http.StatusCreated, "Message sent successfully")
}

// sanitize trims and HTML-escapes free text before it is stored.
func sanitize(value string) string {
	return html.EscapeString(strings.TrimSpace(value))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
