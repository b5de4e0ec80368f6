package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rs/zerolog/log"
)

const notifyTimeout = 10 * time.Second

// CommentNotifier emails the site owner when a reader comments.
type CommentNotifier struct {
	mailer     *Mailer
	adminEmail string
	baseURL    string
	timeout    time.Duration
}

func NewCommentNotifier(mailer *Mailer, adminEmail, baseURL string) *CommentNotifier {
	return &CommentNotifier{
		mailer:     mailer,
		adminEmail: adminEmail,
		baseURL:    baseURL,
		timeout:    notifyTimeout,
	}
}

// Enabled reports whether notifications can be delivered at all.
func (n *CommentNotifier) Enabled() bool {
	return n != nil && n.mailer.Enabled() && n.adminEmail != ""
}

// NotifyComment sends the notification in the background. Delivery failures
// are logged and otherwise ignored.
func (n *CommentNotifier) NotifyComment(post *models.Post, comment *models.Comment) {
	if !n.Enabled() {
		return
	}
	subject, body := n.render(post, comment)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mailer.Send(ctx, subject, body, []string{n.adminEmail}); err != nil {
			log.Warn().Err(err).Str("slug", post.Slug).Uint("commentId", comment.ID).Msg("Failed to send comment notification")
		}
	}()
}

func (n *CommentNotifier) render(post *models.Post, comment *models.Comment) (string, string) {
	subject := fmt.Sprintf("New comment on %q", post.Title)

	link := AbsoluteURL(n.baseURL, PostPath(post.Slug))
	body := fmt.Sprintf(
		"<p><strong>%s</strong> (%s) commented on <a href=\"%s\">%s</a>:</p><blockquote>%s</blockquote>",
		html.EscapeString(comment.AuthorName),
		html.EscapeString(comment.AuthorEmail),
		html.EscapeString(link),
		html.EscapeString(post.Title),
		html.EscapeString(comment.Content),
	)
	return subject, body
}
