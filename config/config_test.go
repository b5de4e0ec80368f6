package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"NAME":    "  blog ",
		"EMPTY":   "   ",
		"COUNT":   "42",
		"BAD_INT": "x",
		"FLAG":    "true",
		"LIST":    "a, b,,c ",
	}

	assert.Equal(t, "blog", GetString(c, "NAME", "d"))
	assert.Equal(t, "d", GetString(c, "EMPTY", "d"))
	assert.Equal(t, "d", GetString(nil, "NAME", "d"))
	assert.Equal(t, 42, GetInt(c, "COUNT", 1))
	assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.False(t, GetBool(c, "MISSING", false))
	assert.Equal(t, []string{"a", "b", "c"}, GetList(c, "LIST", nil))
	assert.Equal(t, []string{"*"}, GetList(c, "MISSING", []string{"*"}))
}

func TestLoadDefaults(t *testing.T) {
	app := Load(map[string]string{})

	assert.Equal(t, "8080", app.Port)
	assert.Equal(t, DefaultJWTSecret, app.JWTSecret)
	assert.Equal(t, DefaultMaxCommentLength, app.MaxCommentLength)
	assert.Equal(t, "admin", app.AdminUsername)
	assert.Equal(t, "local", app.UploadBackend)
	assert.Equal(t, []string{"*"}, app.AcceptedOrigins)
}

func TestLoadClientIDFallback(t *testing.T) {
	app := Load(map[string]string{"NEXT_PUBLIC_GOOGLE_CLIENT_ID": "public-id"})
	assert.Equal(t, "public-id", app.GoogleClientID)

	app = Load(map[string]string{
		"GOOGLE_CLIENT_ID":             "server-id",
		"NEXT_PUBLIC_GOOGLE_CLIENT_ID": "public-id",
	})
	assert.Equal(t, "server-id", app.GoogleClientID)
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	app := Load(map[string]string{"MAX_COMMENT_LENGTH": "0", "UPLOAD_MAX_MB": "-3"})
	assert.Equal(t, DefaultMaxCommentLength, app.MaxCommentLength)
	assert.Equal(t, DefaultUploadMaxMB, app.UploadMaxMB)
}
