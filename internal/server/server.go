package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// ContentReader resolves owner rows into documents.
type ContentReader interface {
	Languages() content.Languages
	List(ctx context.Context, kind *content.Kind, query content.Query, view content.View) ([]*content.Document, error)
	Lookup(ctx context.Context, kind *content.Kind, query content.Query, view content.View) (*content.Document, error)
}

// ContentWriter applies change sets.
type ContentWriter interface {
	Create(ctx context.Context, kind *content.Kind, cs content.ChangeSet) (string, error)
	Update(ctx context.Context, kind *content.Kind, id string, cs content.ChangeSet) error
	Delete(ctx context.Context, kind *content.Kind, id string) error
	Apply(ctx context.Context, kind *content.Kind, changes []content.Change) ([]string, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *types.Message) error
	Messages(ctx context.Context, limit, offset uint64) ([]*types.Message, error)
	DeleteMessage(ctx context.Context, id int64) error
	CreateContactMessage(ctx context.Context, message *types.ContactMessage) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	reader   ContentReader
	writer   ContentWriter
	messages MessageStore
	health   Pinger

	authenticator auth.Authenticator
	cookie        *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	reader ContentReader,
	writer ContentWriter,
	messages MessageStore,
	authenticator auth.Authenticator,
	health Pinger,
) (*Service, error) {
	mux := flow.New()

	cookie, err := newSecureCookie(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:        logger,
		config:        config,
		reader:        reader,
		writer:        writer,
		messages:      messages,
		health:        health,
		authenticator: authenticator,
		cookie:        cookie,
	}

	s.buildRouter(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.protect(mux),
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler is the fully wrapped router.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

// protect wraps the router with the handlers that must also see requests no
// route matches, such as CORS preflights and trailing slash paths.
func (s *Service) protect(next http.Handler) http.Handler {
	handler := SecurityHeaders(s.StripTrailingSlash(next))

	if s.config.RateLimitRequests > 0 {
		window := time.Duration(s.config.RateLimitWindowSec) * time.Second
		handler = httprate.Limit(
			s.config.RateLimitRequests,
			window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				s.writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests from this IP, please try again later.",
				})
			}),
		)(handler)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})(handler)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

	s.handle(r, "/api/languages", s.handleGetLanguages, http.MethodGet)

	s.handle(r, "/api/auth/login", s.handlePostLogin, http.MethodPost)
	s.handle(r, "/api/auth/check", s.handleGetAuthCheck, http.MethodGet)
	s.handle(r, "/api/auth/logout", s.handlePostLogout, http.MethodPost)

	s.handle(r, "/api/messages/send", s.handlePostMessage, http.MethodPost)
	s.handle(r, "/api/contact", s.handlePostContact, http.MethodPost)

	s.handle(r, "/api/aboutus", s.handleGetAboutUs, http.MethodGet)
	s.handle(r, "/api/categories", s.handleGetCategories, http.MethodGet)
	s.handle(r, "/api/categories/:slug/projects", s.handleGetCategoryProjects, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		s.handle(r, "/api/projects/search", s.handleSearchProjects, http.MethodGet)
		s.handle(r, "/api/projects/admin/:id", s.handleGetProjectAdmin, http.MethodGet)
		s.handle(r, "/api/projects/create", s.handleCreateProject, http.MethodPost)
		s.handle(r, "/api/projects/update/:id", s.handleUpdateProject, http.MethodPut)
		s.handle(r, "/api/projects/delete/:id", s.handleDeleteProject, http.MethodDelete)

		s.handle(r, "/api/categories/new", s.handleCreateCategory, http.MethodPost)
		s.handle(r, "/api/categories/:id", s.handleUpdateCategory, http.MethodPut)
		s.handle(r, "/api/categories/:id", s.handleDeleteCategory, http.MethodDelete)

		s.handle(r, "/api/aboutus/admin", s.handleGetAboutUsAdmin, http.MethodGet)
		s.handle(r, "/api/aboutus/content-sections", s.handlePutContentSections, http.MethodPut)

		s.handle(r, "/api/messages", s.handleGetMessages, http.MethodGet)
		s.handle(r, "/api/messages/:id", s.handleDeleteMessage, http.MethodDelete)
	})

	// Registered after the admin group so /search and /admin/:id match first.
	s.handle(r, "/api/projects/:id", s.handleGetProject, http.MethodGet)
	s.handle(r, "/api/categories/:slug", s.handleGetCategory, http.MethodGet)
}

func (s *Service) handle(r *flow.Mux, pattern string, handler http.HandlerFunc, methods ...string) {
	r.Handle(pattern, s.instrument(pattern, handler), methods...)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		s.logger.WithError(err).Error("health check failed")
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func newSecureCookie(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	if len(hashKey) == 0 {
		if !config.IsDevelopment() {
			return nil, fmt.Errorf("COOKIE_HASH_KEY is required outside development")
		}
		logger.Warn("COOKIE_HASH_KEY not set, generating an ephemeral key")
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	}
	if len(blockKey) == 0 {
		blockKey = nil
	}

	return securecookie.New(hashKey, blockKey), nil
}
