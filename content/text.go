package content

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	MaxSlugLength  = 100
	wordsPerMinute = 200
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	slugStrip         = regexp.MustCompile(`[^a-z0-9\s-]`)
	hyphenRun         = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, drops everything outside [a-z0-9], whitespace and
// hyphens, hyphenates whitespace runs and truncates to MaxSlugLength.
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = whitespacePattern.ReplaceAllString(slug, "-")
	slug = hyphenRun.ReplaceAllString(slug, "-")
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}

// PlainText strips tags from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Excerpt returns at most n runes of text.
func Excerpt(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:n]))
}

// ReadingMinutes estimates the reading time of an HTML fragment, never less
// than one minute.
func ReadingMinutes(fragment string) int {
	words := len(strings.Fields(PlainText(fragment)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
