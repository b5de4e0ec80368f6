// Package content turns author-supplied Markdown or HTML into the safe HTML
// stored on posts.
package content

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// raw HTML is passed through so the policy below is the only gate
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	policy = newPolicy()

	requiredRel = []string{"noopener", "noreferrer"}
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)).OnElements("a")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code", "pre")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img")
	return p
}

// RenderMarkdown converts Markdown to sanitized, link-hardened HTML.
func RenderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		log.Warn().Err(err).Msg("markdown conversion failed, sanitizing source as text")
		buf.Reset()
		buf.WriteString(html.EscapeString(md))
	}
	return hardenLinks(policy.Sanitize(buf.String()))
}

// SanitizeHTML cleans editor HTML with the same pipeline as RenderMarkdown.
func SanitizeHTML(raw string) string {
	return hardenLinks(policy.Sanitize(raw))
}

// hardenLinks forces target=_blank and merges noopener/noreferrer into rel on
// every anchor with an href. On any parse or render failure the input is
// returned unchanged.
func hardenLinks(sanitized string) string {
	if !strings.Contains(sanitized, "<a") {
		return sanitized
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(sanitized), body)
	if err != nil {
		log.Warn().Err(err).Msg("link hardening parse failed")
		return sanitized
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n, hardenAnchor)
		if err := html.Render(&buf, n); err != nil {
			log.Warn().Err(err).Msg("link hardening render failed")
			return sanitized
		}
	}
	return buf.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hardenAnchor(n *html.Node) {
	if n.Type != html.ElementNode || n.DataAtom != atom.A {
		return
	}
	if _, ok := attr(n, "href"); !ok {
		return
	}

	setAttr(n, "target", "_blank")

	existing, _ := attr(n, "rel")
	setAttr(n, "rel", MergeRel(existing, requiredRel...))
}

// MergeRel keeps the existing rel tokens in order, drops duplicates and
// appends any of required that are missing.
func MergeRel(existing string, required ...string) string {
	seen := make(map[string]bool)
	tokens := make([]string, 0, len(required)+2)
	for _, tok := range append(strings.Fields(existing), required...) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
