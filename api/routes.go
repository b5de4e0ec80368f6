package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type rateLimits struct {
	auth    func(http.Handler) http.Handler
	comment func(http.Handler) http.Handler
}

// setupRoutes registers every route. authMiddleware.resolve already ran for
// all of them; protected routes add require on top.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limits rateLimits, uploadDir string) {
	r.Get("/health", handlers.siteHandler.health())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/sitemap.xml", handlers.siteHandler.sitemap())

	r.Get("/post/{slug}", handlers.siteHandler.legacyPost())
	r.Get("/admin", handlers.siteHandler.legacyAdmin())
	r.Get("/admin.html", handlers.siteHandler.legacyAdmin())

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", handlers.postHandler.getPosts())
		r.Get("/random", handlers.siteHandler.randomPost())
		r.Get("/{slug}", handlers.postHandler.getPost())
		r.Get("/{slug}/meta", handlers.siteHandler.postMeta())
		r.Get("/{slug}/comments", handlers.commentHandler.getComments())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.require)

			r.Post("/", handlers.postHandler.createPost())
			r.Put("/{slug}", handlers.postHandler.updatePost())
			r.Delete("/{slug}", handlers.postHandler.deletePost())

			r.With(limits.comment).Post("/{slug}/comments", handlers.commentHandler.createComment())
			r.Delete("/{slug}/comments/{id}", handlers.commentHandler.deleteComment())
		})
	})

	r.With(limits.auth).Post("/auth/google", handlers.authHandler.googleSignIn())
	r.With(authMiddleware.require).Get("/auth/me", handlers.authHandler.me())
	r.With(authMiddleware.require).Post("/upload", handlers.uploadHandler.uploadImage())

	if uploadDir != "" {
		r.Handle("/uploads/*", uploads(uploadDir))
	}
}
