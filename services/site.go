package services

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/rpupo63/personal-blog-backend/models"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// PostPath is the public path a post is read at.
func PostPath(slug string) string {
	return "/posts/" + slug
}

// AbsoluteURL joins baseURL and path. With no base URL the path is returned
// unchanged so links stay relative.
func AbsoluteURL(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(baseURL, "/") + path
}

type SitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// StaticSitemapEntries are listed even when the post query fails.
func StaticSitemapEntries(baseURL string) []SitemapURL {
	return []SitemapURL{
		{Loc: AbsoluteURL(baseURL, "/"), ChangeFreq: "weekly", Priority: 1},
		{Loc: AbsoluteURL(baseURL, "/editor"), ChangeFreq: "monthly", Priority: 0.3},
	}
}

// BuildSitemap renders the static entries followed by one entry per post.
func BuildSitemap(baseURL string, posts []models.PostSummary) ([]byte, error) {
	set := urlSet{
		Xmlns: sitemapNamespace,
		URLs:  StaticSitemapEntries(baseURL),
	}
	for _, p := range posts {
		entry := SitemapURL{
			Loc:        AbsoluteURL(baseURL, PostPath(p.Slug)),
			ChangeFreq: "weekly",
		}
		if !p.UpdatedAt.IsZero() {
			entry.LastMod = p.UpdatedAt.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, entry)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
