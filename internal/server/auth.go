package server

import (
	"net/http"

	"portfolio/internal"
	"portfolio/internal/validation"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "login")
		return
	}
	req.Email = normalizeEmail(req.Email)

	if err := validation.ValidateStruct(&req); err != nil {
		s.writeError(w, r, err, "login")
		return
	}

	session, err := s.authenticator.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err, "login")
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, session.Token)
	if err != nil {
		s.writeError(w, r, err, "login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(session.ExpiresIn.Seconds()),
		Path:     "/",
	})

	s.writeMessage(w, http.StatusOK, "Logged in successfully")
}

func (s *Service) handleGetAuthCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := s.verifyRequest(r); err != nil {
		s.writeUnauthorized(w, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "ok")
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.writeMessage(w, http.StatusOK, "Logged out successfully")
}
