package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder   Responder
	logger      zerolog.Logger
	postRepo    *database.PostRepo
	commentRepo *database.CommentRepo
	maxLength   int
	notifier    *services.CommentNotifier
}

func newCommentHandler(postRepo *database.PostRepo, commentRepo *database.CommentRepo, maxLength int, notifier *services.CommentNotifier) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		maxLength:   maxLength,
		notifier:    notifier,
	}
}

// visiblePost loads the post named in the path. Missing posts and private
// posts seen by non-admins both answer 404, and the returned post is nil.
func (h commentHandler) visiblePost(w http.ResponseWriter, r *http.Request) *models.Post {
	post, err := h.postRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
		return nil
	}
	if post == nil || !post.Published.Readable(ctxIsAdmin(r.Context())) {
		h.responder.WriteError(w, errs.NewNotFoundError("not found"))
		return nil
	}
	return post
}

func (h commentHandler) getComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := h.visiblePost(w, r)
		if post == nil {
			return
		}

		comments, err := h.commentRepo.FindByPost(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comments", err))
			return
		}
		h.responder.WriteJSON(w, comments)
	}
}

func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxGetIdentity(r.Context())

		post := h.visiblePost(w, r)
		if post == nil {
			return
		}

		req := decodeLenient[commentRequest](r)
		body := strings.TrimSpace(rawText(req.Content))
		if body == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("content"))
			return
		}
		if utf8.RuneCountInString(body) > h.maxLength {
			h.responder.WriteError(w, errs.NewBadRequestErrorWithField(
				fmt.Sprintf("comment is too long (max %d characters)", h.maxLength), "content", ""))
			return
		}

		if !identity.IsAdmin {
			count, err := h.commentRepo.CountByAuthor(r.Context(), post.ID, identity.Email)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("count", "comments", err))
				return
			}
			if count >= models.MaxCommentsPerAuthor {
				h.responder.WriteError(w, errs.NewRateLimitError(
					fmt.Sprintf("you have reached the comment limit (%d) for this post", models.MaxCommentsPerAuthor)))
				return
			}
		}

		comment := &models.Comment{
			PostID:        post.ID,
			AuthorEmail:   identity.Email,
			AuthorName:    identity.DisplayName(),
			AuthorPicture: identity.Picture,
			Content:       body,
			CreatedAt:     time.Now().UTC(),
		}
		if err := h.commentRepo.Add(r.Context(), comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}

		if !identity.IsAdmin {
			h.notifier.NotifyComment(post, comment)
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, comment)
	}
}

// deleteComment lets the admin or the comment's author remove it.
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxGetIdentity(r.Context())

		commentID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid id"))
			return
		}

		post, err := h.postRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("not found"))
			return
		}

		comment, err := h.commentRepo.FindByID(r.Context(), uint(commentID))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comment", err))
			return
		}
		if comment == nil || comment.PostID != post.ID {
			h.responder.WriteError(w, errs.NewNotFoundError("not found"))
			return
		}

		if !identity.IsAdmin && !identity.Owns(comment.AuthorEmail) {
			h.responder.WriteError(w, errs.NewForbiddenError("forbidden"))
			return
		}

		if err := h.commentRepo.Delete(r.Context(), comment.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "comment", err))
			return
		}
		h.responder.WriteJSON(w, OKResponse{OK: true})
	}
}
