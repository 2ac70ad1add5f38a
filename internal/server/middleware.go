package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio/internal"
	"portfolio/internal/auth"
	"portfolio/internal/metrics"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyClaims contextKey = "claims"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// instrument records request metrics labelled with the route pattern rather
// than the raw path.
func (s *Service) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(started).Seconds())
	})
}

// RequireAuth rejects requests without a verified admin access token cookie
// and adds the token claims to the context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.verifyRequest(r)
		if err != nil {
			s.logger.WithError(err).Debug("rejected unauthenticated request")
			s.writeUnauthorized(w, err)
			return
		}

		if !claims.IsAdmin() {
			s.logger.WithField("user_id", claims.Subject).Warn("rejected non-admin request")
			s.writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": claims.Subject,
			"email":   claims.Email,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

var errNoToken = errors.New("no access token cookie")

func (s *Service) verifyRequest(r *http.Request) (*auth.Claims, error) {
	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return nil, errNoToken
	}

	var accessToken string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken); err != nil {
		return nil, errors.Join(auth.ErrInvalidToken, err)
	}

	return s.authenticator.Verify(r.Context(), accessToken)
}

// isPrivileged reports whether the request carries a verified admin token.
// Routes outside the admin group use it to widen their view.
func (s *Service) isPrivileged(r *http.Request) bool {
	if claims, ok := r.Context().Value(contextKeyClaims).(*auth.Claims); ok {
		return claims.IsAdmin()
	}

	claims, err := s.verifyRequest(r)
	if err != nil {
		return false
	}
	return claims.IsAdmin()
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")

		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
