package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	sitemapQueryTimeout = 2 * time.Second
	descriptionLength   = 160
)

type siteHandler struct {
	responder    Responder
	logger       zerolog.Logger
	postRepo     *database.PostRepo
	commentRepo  *database.CommentRepo
	baseURL      string
	startupTime  time.Time
	sitemapQuery time.Duration
}

func newSiteHandler(postRepo *database.PostRepo, commentRepo *database.CommentRepo, baseURL string, startupTime time.Time) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		baseURL:      baseURL,
		startupTime:  startupTime,
		sitemapQuery: sitemapQueryTimeout,
	}
}

func (h siteHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, healthResponse{
			Status: "ok",
			Uptime: time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}

// sitemap lists the static pages and every public post. When the post query
// fails or overruns its deadline only the static pages are listed.
func (h siteHandler) sitemap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.sitemapQuery)
		defer cancel()

		posts, err := h.postRepo.FindSitemapEntries(ctx)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Sitemap post query failed, serving static entries")
			posts = nil
		}

		body, err := services.BuildSitemap(h.baseURL, posts)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to build sitemap", err))
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write(body)
	}
}

// randomPost redirects to a random public post, then the newest one, then
// the home page.
func (h siteHandler) randomPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, pick := range []func(context.Context) (string, bool, error){
			h.postRepo.RandomPublicSlug,
			h.postRepo.LatestPublicSlug,
		} {
			slug, found, err := pick(r.Context())
			if err != nil {
				h.logger.Warn().Err(err).Msg("Random post lookup failed")
				continue
			}
			if found {
				http.Redirect(w, r, services.PostPath(slug), http.StatusFound)
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// postMeta returns what a page needs for its head tags.
func (h siteHandler) postMeta() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.postRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || !post.Published.Readable(ctxIsAdmin(r.Context())) {
			h.responder.WriteError(w, errs.NewNotFoundError("not found"))
			return
		}

		comments, err := h.commentRepo.CountByPost(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "comments", err))
			return
		}

		text := content.PlainText(post.ContentHTML)
		if text == "" {
			text = strings.Join(strings.Fields(post.ContentMD), " ")
		}

		h.responder.WriteJSON(w, postMetaResponse{
			Title:          post.Title,
			Description:    content.Excerpt(text, descriptionLength),
			Canonical:      services.AbsoluteURL(h.baseURL, services.PostPath(post.Slug)),
			CoverImage:     post.CoverImage,
			ReadingMinutes: content.ReadingMinutes(post.ContentHTML),
			CommentCount:   comments,
			Indexable:      post.Published == models.Public,
		})
	}
}

func (h siteHandler) legacyPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, services.PostPath(chi.URLParam(r, "slug")), http.StatusMovedPermanently)
	}
}

func (h siteHandler) legacyAdmin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/editor", http.StatusMovedPermanently)
	}
}

// uploads serves the local upload directory without directory listings.
func uploads(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
