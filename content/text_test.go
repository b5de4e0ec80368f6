package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Hello,   World!  ", "hello-world"},
		{"Go 1.22 -- what's new?", "go-122-whats-new"},
		{"already-a-slug", "already-a-slug"},
		{"Home", "home"},
		{"!!!", ""},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	titles := []string{
		"Hello World",
		"A  -  spaced - title",
		strings.Repeat("long title ", 30),
		"Ünïcödé & symbols #1",
	}

	for _, title := range titles {
		once := Slugify(title)
		assert.Equal(t, once, Slugify(once), title)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	slug := Slugify(strings.Repeat("a", 250))
	assert.Len(t, slug, MaxSlugLength)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world & more", PlainText("<p>Hello <b>world</b></p>\n\n<p>&amp; more</p>"))
	assert.Equal(t, "", PlainText("<br/>"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 160))
	assert.Equal(t, "héll", Excerpt("héllo", 4))
	assert.Equal(t, "", Excerpt("anything", 0))
}

func TestReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadingMinutes(""))
	assert.Equal(t, 1, ReadingMinutes("<p>"+strings.Repeat("word ", 200)+"</p>"))
	assert.Equal(t, 3, ReadingMinutes("<p>"+strings.Repeat("word ", 401)+"</p>"))
}
