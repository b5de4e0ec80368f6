package api

import (
	"encoding/json"
	"math"

	"github.com/rpupo63/personal-blog-backend/auth"
	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/services"
	"github.com/rpupo63/personal-blog-backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, rt *router, tokens *auth.TokenIssuer) *routeHandlers {
	s := rt.settings
	return &routeHandlers{
		postHandler:    newPostHandler(db.PostRepo()),
		commentHandler: newCommentHandler(db.PostRepo(), db.CommentRepo(), s.MaxCommentLength, rt.notifier),
		authHandler:    newAuthHandler(tokens, rt.verifier, s.GoogleClientID, s.AdminEmail),
		uploadHandler:  newUploadHandler(rt.store, int64(s.UploadMaxMB)<<20),
		siteHandler:    newSiteHandler(db.PostRepo(), db.CommentRepo(), s.BaseURL, rt.startupTime),
	}
}

// routerDefaults fills in collaborators main did not supply.
func routerDefaults(rt *router) {
	if rt.settings.MaxCommentLength <= 0 {
		rt.settings.MaxCommentLength = config.DefaultMaxCommentLength
	}
	if rt.settings.UploadMaxMB <= 0 {
		rt.settings.UploadMaxMB = config.DefaultUploadMaxMB
	}
	if rt.settings.UploadDir == "" {
		rt.settings.UploadDir = config.DefaultUploadDir
	}
	if rt.store == nil {
		rt.store = storage.NewLocalStore(rt.settings.UploadDir)
	}
	if rt.notifier == nil {
		rt.notifier = services.NewCommentNotifier(
			services.NewMailer(rt.settings.ResendAPIKey, rt.settings.ResendFromEmail, nil),
			rt.settings.AdminEmail,
			rt.settings.BaseURL,
		)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rawString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func rawBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

// rawVisibility accepts the integers 0, 1 and 2.
func rawVisibility(raw json.RawMessage) (models.Visibility, bool) {
	var n float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n != math.Trunc(n) {
		return models.Private, false
	}
	v := models.Visibility(n)
	return v, v.Valid()
}

// rawText renders a scalar JSON value as text. Strings are returned as is,
// numbers and booleans in their JSON spelling; anything else is empty.
func rawText(raw json.RawMessage) string {
	if s, ok := rawString(raw); ok {
		return s
	}
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch v.(type) {
	case float64, bool:
		return string(raw)
	}
	return ""
}
