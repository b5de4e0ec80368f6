package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "/posts/hello", AbsoluteURL("", PostPath("hello")))
	assert.Equal(t, "https://blog.example.com/posts/hello", AbsoluteURL("https://blog.example.com/", PostPath("hello")))
	assert.Equal(t, "https://blog.example.com/editor", AbsoluteURL("https://blog.example.com", "editor"))
}

func TestBuildSitemap(t *testing.T) {
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out, err := BuildSitemap("https://blog.example.com", []models.PostSummary{
		{Slug: "first-post", UpdatedAt: updated},
	})
	require.NoError(t, err)

	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, xml, "<loc>https://blog.example.com/</loc>")
	assert.Contains(t, xml, "<loc>https://blog.example.com/editor</loc>")
	assert.Contains(t, xml, "<priority>0.3</priority>")
	assert.Contains(t, xml, "<loc>https://blog.example.com/posts/first-post</loc>")
	assert.Contains(t, xml, "<lastmod>2024-05-01T12:00:00Z</lastmod>")
	assert.Equal(t, 3, strings.Count(xml, "<url>"))
}

func TestMailerSend(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	m := NewMailer("re_key", "Blog <blog@example.com>", srv.Client())
	m.endpoint = srv.URL

	require.NoError(t, m.Send(context.Background(), "Hello", "<p>hi</p>", []string{"admin@example.com"}))
	assert.Equal(t, "Blog <blog@example.com>", got.From)
	assert.Equal(t, []string{"admin@example.com"}, got.To)
	assert.Equal(t, "<p>hi</p>", got.Html)
}

func TestMailerSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	m := NewMailer("re_key", "bad", srv.Client())
	m.endpoint = srv.URL

	err := m.Send(context.Background(), "s", "b", []string{"admin@example.com"})
	assert.ErrorContains(t, err, "invalid from address")

	assert.Error(t, m.Send(context.Background(), "s", "b", nil))
	assert.Error(t, NewMailer("", "from", nil).Send(context.Background(), "s", "b", []string{"x@example.com"}))
}

func TestCommentNotifier(t *testing.T) {
	received := make(chan ResendEmailRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ResendEmailRequest
		json.NewDecoder(r.Body).Decode(&req)
		received <- req
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	m := NewMailer("re_key", "blog@example.com", srv.Client())
	m.endpoint = srv.URL
	n := NewCommentNotifier(m, "admin@example.com", "https://blog.example.com")
	require.True(t, n.Enabled())

	n.NotifyComment(
		&models.Post{Slug: "hello", Title: "Hello"},
		&models.Comment{ID: 1, AuthorName: "Reader", AuthorEmail: "r@example.com", Content: "<script>x</script>"},
	)

	select {
	case req := <-received:
		assert.Equal(t, []string{"admin@example.com"}, req.To)
		assert.Contains(t, req.Subject, "Hello")
		assert.Contains(t, req.Html, "https://blog.example.com/posts/hello")
		assert.Contains(t, req.Html, "&lt;script&gt;")
		assert.NotContains(t, req.Html, "<script>")
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestCommentNotifierDisabled(t *testing.T) {
	assert.False(t, NewCommentNotifier(NewMailer("", "", nil), "admin@example.com", "").Enabled())
	assert.False(t, NewCommentNotifier(NewMailer("k", "f", nil), "", "").Enabled())

	var n *CommentNotifier
	assert.False(t, n.Enabled())
	n.NotifyComment(&models.Post{}, &models.Comment{})
}
