package api

import "encoding/json"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	postHandler    postHandler
	commentHandler commentHandler
	authHandler    authHandler
	uploadHandler  uploadHandler
	siteHandler    siteHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// OKResponse acknowledges a deletion.
type OKResponse struct {
	OK bool `json:"ok"`
}

// postRequest is the create/update body. Loosely typed fields stay raw so a
// wrong type only disables that field.
type postRequest struct {
	Title          *string         `json:"title"`
	Slug           *string         `json:"slug"`
	ContentMD      *string         `json:"contentMd"`
	ContentHTML    *string         `json:"contentHtml"`
	CoverImage     json.RawMessage `json:"coverImage"`
	Published      json.RawMessage `json:"published"`
	PublishedState json.RawMessage `json:"publishedState"`
	Visibility     json.RawMessage `json:"visibility"`
}

type commentRequest struct {
	Content json.RawMessage `json:"content"`
}

type googleAuthRequest struct {
	IDToken    json.RawMessage `json:"idToken"`
	Credential json.RawMessage `json:"credential"`
	Token      json.RawMessage `json:"token"`
}

type googleAuthResponse struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	IsAdmin bool   `json:"isAdmin"`
}

type meResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	IsAdmin  bool   `json:"isAdmin"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// postMetaResponse is what page templates need for SEO tags.
type postMetaResponse struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Canonical      string  `json:"canonical"`
	CoverImage     *string `json:"cover_image"`
	ReadingMinutes int     `json:"reading_minutes"`
	CommentCount   int64   `json:"comment_count"`
	Indexable      bool    `json:"indexable"`
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}
