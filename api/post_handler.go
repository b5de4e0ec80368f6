package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	postRepo  *database.PostRepo
}

func newPostHandler(postRepo *database.PostRepo) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		postRepo:  postRepo,
	}
}

// getPosts lists posts newest first. Admins see every post; everyone else
// only sees public ones. The home post is never listed.
func (h postHandler) getPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.postRepo.FindListed(r.Context(), ctxIsAdmin(r.Context()))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "posts", err))
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getPost returns one post. Private posts answer 404 to non-admins.
func (h postHandler) getPost() http.HandlerFunc {
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
		h.responder.WriteJSON(w, post)
	}
}

func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewForbiddenError("forbidden"))
			return
		}

		req := decodeLenient[postRequest](r)
		title := strings.TrimSpace(deref(req.Title))
		md, html := deref(req.ContentMD), deref(req.ContentHTML)
		if title == "" || (md == "" && html == "") {
			h.responder.WriteError(w, errs.NewBadRequestError("missing title or content"))
			return
		}

		source := title
		if s := deref(req.Slug); s != "" {
			source = s
		}
		slug := content.Slugify(source)
		if slug == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("slug", "must contain letters or digits"))
			return
		}
		if models.IsReservedSlug(slug) {
			h.responder.WriteError(w, errs.NewBadRequestError("reserved slug"))
			return
		}

		post := &models.Post{
			Slug:       slug,
			Title:      title,
			CoverImage: coverImage(req, nil),
			Published:  resolveVisibility(req, models.Private),
		}
		post.ContentMD, post.ContentHTML = renderContent(req, "", "")

		if err := h.postRepo.Add(r.Context(), post); err != nil {
			h.writeSaveError(w, "create", err)
			return
		}

		h.logger.Info().Str("slug", post.Slug).Str("visibility", post.Published.String()).Msg("Created post")
		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

// updatePost applies the supplied fields and leaves the rest unchanged. The
// home post keeps its slug whatever the body says.
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewForbiddenError("forbidden"))
			return
		}

		current, err := h.postRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if current == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("not found"))
			return
		}

		req := decodeLenient[postRequest](r)

		if title := strings.TrimSpace(deref(req.Title)); title != "" {
			current.Title = title
		}
		if raw := deref(req.Slug); raw != "" && !current.IsHome() {
			slug := content.Slugify(raw)
			if slug == "" {
				h.responder.WriteError(w, errs.NewInvalidFieldError("slug", "must contain letters or digits"))
				return
			}
			if slug != current.Slug && models.IsReservedSlug(slug) {
				h.responder.WriteError(w, errs.NewBadRequestError("reserved slug"))
				return
			}
			current.Slug = slug
		}
		current.ContentMD, current.ContentHTML = renderContent(req, current.ContentMD, current.ContentHTML)
		current.CoverImage = coverImage(req, current.CoverImage)
		current.Published = resolveVisibility(req, current.Published)

		if err := h.postRepo.Update(r.Context(), current); err != nil {
			h.writeSaveError(w, "update", err)
			return
		}

		h.responder.WriteJSON(w, current)
	}
}

func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewForbiddenError("forbidden"))
			return
		}

		slug := chi.URLParam(r, "slug")
		if slug == models.HomeSlug {
			h.responder.WriteError(w, errs.NewBadRequestError("cannot delete home page"))
			return
		}

		post, err := h.postRepo.FindBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("not found"))
			return
		}

		if _, err := h.postRepo.Delete(r.Context(), post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}

		h.logger.Info().Str("slug", slug).Msg("Deleted post")
		h.responder.WriteJSON(w, OKResponse{OK: true})
	}
}

func (h postHandler) writeSaveError(w http.ResponseWriter, operation string, err error) {
	if errs.IsUniqueViolation(err) {
		h.responder.WriteError(w, errs.NewConflictError("slug already exists"))
		return
	}
	h.responder.WriteError(w, wrapDatabaseError(operation, "post", err))
}

// renderContent derives both stored representations. Supplied HTML wins and
// is sanitized; otherwise supplied Markdown is rendered. A field that is not
// supplied keeps its current value, or is derived from the other one when
// that one changed.
func renderContent(req postRequest, currentMD, currentHTML string) (string, string) {
	md, html := currentMD, currentHTML

	switch {
	case deref(req.ContentHTML) != "":
		html = content.SanitizeHTML(*req.ContentHTML)
		md = content.PlainText(html)
	case deref(req.ContentMD) != "":
		html = content.RenderMarkdown(*req.ContentMD)
	}

	if req.ContentMD != nil {
		md = *req.ContentMD
	}
	return md, html
}

// resolveVisibility reads publishedState first, then visibility, then
// published. Anything unrecognised leaves current in place.
func resolveVisibility(req postRequest, current models.Visibility) models.Visibility {
	if v, ok := rawVisibility(req.PublishedState); ok {
		return v
	}
	if name, ok := rawString(req.Visibility); ok {
		if v, ok := models.ParseVisibility(name); ok {
			return v
		}
	}
	if b, ok := rawBool(req.Published); ok {
		if b {
			return models.Public
		}
		return models.Private
	}
	if v, ok := rawVisibility(req.Published); ok {
		return v
	}
	return current
}

// coverImage applies the coverImage field: absent keeps current, null or an
// empty string clears it.
func coverImage(req postRequest, current *string) *string {
	if len(req.CoverImage) == 0 {
		return current
	}
	s, ok := rawString(req.CoverImage)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
