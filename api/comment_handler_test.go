package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Talk", "contentMd": "x", "published": true})
	reader := env.token("reader@example.com", "Reader Person")

	rec := env.do(http.MethodPost, "/posts/talk/comments", reader, map[string]interface{}{"content": "  Nice post!  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	assert.Equal(t, "Nice post!", comment.Content)
	assert.Equal(t, "reader@example.com", comment.AuthorEmail)
	assert.Equal(t, "Reader Person", comment.AuthorName)
	assert.NotZero(t, comment.ID)

	comments := decode[[]models.Comment](t, env.do(http.MethodGet, "/posts/talk/comments", "", nil))
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)
}

func TestCreateCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Talk", "contentMd": "x", "published": true})
	reader := env.token("reader@example.com", "Reader")

	tests := []struct {
		name  string
		path  string
		token string
		body  interface{}
		want  int
	}{
		{"anonymous", "/posts/talk/comments", "", map[string]interface{}{"content": "hi"}, http.StatusUnauthorized},
		{"missing post", "/posts/nope/comments", reader, map[string]interface{}{"content": "hi"}, http.StatusNotFound},
		{"empty", "/posts/talk/comments", reader, map[string]interface{}{"content": "   "}, http.StatusBadRequest},
		{"absent", "/posts/talk/comments", reader, map[string]interface{}{}, http.StatusBadRequest},
		{"malformed", "/posts/talk/comments", reader, "{", http.StatusBadRequest},
		{"too long", "/posts/talk/comments", reader, map[string]interface{}{"content": strings.Repeat("a", 51)}, http.StatusBadRequest},
		{"at limit", "/posts/talk/comments", reader, map[string]interface{}{"content": strings.Repeat("é", 50)}, http.StatusCreated},
		{"number", "/posts/talk/comments", reader, map[string]interface{}{"content": 42}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCommentCapPerAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Popular", "contentMd": "x", "published": true})
	env.createPost(map[string]interface{}{"title": "Other", "contentMd": "x", "published": true})

	upper := env.token("Reader@Example.com", "Reader")
	lower := env.token("reader@example.com", "Reader")

	for i, tok := range []string{upper, lower, upper} {
		rec := env.do(http.MethodPost, "/posts/popular/comments", tok, map[string]interface{}{"content": fmt.Sprintf("comment %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(http.MethodPost, "/posts/popular/comments", lower, map[string]interface{}{"content": "one more"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = env.do(http.MethodPost, "/posts/other/comments", lower, map[string]interface{}{"content": "elsewhere"})
	assert.Equal(t, http.StatusCreated, rec.Code, "cap is per post")

	for i := 0; i < models.MaxCommentsPerAuthor+2; i++ {
		rec := env.do(http.MethodPost, "/posts/popular/comments", env.adminToken(), map[string]interface{}{"content": "admin reply"})
		require.Equal(t, http.StatusCreated, rec.Code, "admin is exempt")
	}

	comments := decode[[]models.Comment](t, env.do(http.MethodGet, "/posts/popular/comments", "", nil))
	assert.Len(t, comments, 3+models.MaxCommentsPerAuthor+2)
}

func TestCommentsOnHiddenPosts(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Secret", "contentMd": "x"})
	env.createPost(map[string]interface{}{"title": "Link Only", "contentMd": "x", "visibility": "unlisted"})
	reader := env.token("reader@example.com", "Reader")

	rec := env.do(http.MethodPost, "/posts/secret/comments", reader, map[string]interface{}{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/posts/secret/comments", env.adminToken(), map[string]interface{}{"content": "note to self"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/posts/link-only/comments", reader, map[string]interface{}{"content": "found it"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCommentsAreOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Thread", "contentMd": "x", "published": true})

	for _, body := range []string{"first", "second", "third"} {
		rec := env.do(http.MethodPost, "/posts/thread/comments", env.adminToken(), map[string]interface{}{"content": body})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	comments := decode[[]models.Comment](t, env.do(http.MethodGet, "/posts/thread/comments", "", nil))
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "third", comments[2].Content)
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t)
	env.createPost(map[string]interface{}{"title": "Thread", "contentMd": "x", "published": true})
	env.createPost(map[string]interface{}{"title": "Elsewhere", "contentMd": "x", "published": true})

	author := env.token("author@example.com", "Author")
	stranger := env.token("stranger@example.com", "Stranger")

	add := func() models.Comment {
		rec := env.do(http.MethodPost, "/posts/thread/comments", author, map[string]interface{}{"content": "mine"})
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode[models.Comment](t, rec)
	}

	first := add()
	path := fmt.Sprintf("/posts/thread/comments/%d", first.ID)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodDelete, path, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, path, stranger, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodDelete, "/posts/thread/comments/abc", author, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/posts/missing/comments/1", author, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/posts/thread/comments/9999", author, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		env.do(http.MethodDelete, fmt.Sprintf("/posts/elsewhere/comments/%d", first.ID), author, nil).Code)

	ownerCase := env.token("AUTHOR@example.com", "Author")
	rec := env.do(http.MethodDelete, path, ownerCase, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, path, author, nil).Code)

	second := add()
	rec = env.do(http.MethodDelete, fmt.Sprintf("/posts/thread/comments/%d", second.ID), env.adminToken(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	comments := decode[[]models.Comment](t, env.do(http.MethodGet, "/posts/thread/comments", "", nil))
	assert.Empty(t, comments)
}
