package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpupo63/personal-blog-backend/auth"
	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/services"
	"github.com/rpupo63/personal-blog-backend/storage"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// NewServer wires the router from the environment map c. Options override
// the collaborators built from it.
func NewServer(database database.Database, c map[string]string, opts ...Option) (Server, error) {
	settings := config.Load(c)
	if settings.JWTSecret == config.DefaultJWTSecret {
		log.Warn().Msg("JWT_SECRET is not set, using the development default")
	}

	address := fmt.Sprintf("0.0.0.0:%s", settings.Port)

	startupTime := time.Now()

	opts = append([]Option{withSettings(settings), withStartupTime(startupTime)}, opts...)
	router := newRouter(database, opts...)

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

// Option customizes the router NewServer builds.
type Option func(*router)

type router struct {
	settings    config.App
	startupTime time.Time
	verifier    auth.GoogleVerifier
	store       storage.ImageStore
	notifier    *services.CommentNotifier
}

func withSettings(settings config.App) Option {
	return func(r *router) {
		r.settings = settings
	}
}

func withStartupTime(startupTime time.Time) Option {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// WithGoogleVerifier sets how Google ID tokens are checked.
func WithGoogleVerifier(v auth.GoogleVerifier) Option {
	return func(r *router) {
		r.verifier = v
	}
}

// WithImageStore replaces the local upload directory store.
func WithImageStore(s storage.ImageStore) Option {
	return func(r *router) {
		r.store = s
	}
}

// WithCommentNotifier replaces the notifier built from the Resend settings.
func WithCommentNotifier(n *services.CommentNotifier) Option {
	return func(r *router) {
		r.notifier = n
	}
}

func newRouter(database database.Database, opts ...Option) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	routerDefaults(&router)

	tokens := auth.NewTokenIssuer(router.settings.JWTSecret)
	handlers := initializeHandlers(database, &router, tokens)
	authMiddleware := newAuthMiddleware(tokens, router.settings.AdminEmail)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(recordMetrics)
	chiRouter.Use(ColoredHTTPLoggingMiddleware)

	origins := router.settings.AcceptedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	chiRouter.Use(CORSCheckMiddleware(origins))
	chiRouter.Use(corsMiddleware(origins))
	chiRouter.Use(authMiddleware.resolve)

	limits := rateLimits{
		auth:    rateLimit(router.settings.AuthRatePerMinute, handlers.authHandler.responder),
		comment: rateLimit(router.settings.CommentRatePerMinute, handlers.commentHandler.responder),
	}

	uploadDir := ""
	if local, ok := router.store.(*storage.LocalStore); ok {
		uploadDir = local.Dir()
	}

	setupRoutes(chiRouter, handlers, authMiddleware, limits, uploadDir)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
