package models

import "strings"

// Visibility is the tri-state published flag stored on posts.
type Visibility int

const (
	Private  Visibility = 0
	Public   Visibility = 1
	Unlisted Visibility = 2
)

// Valid reports whether v is one of the known states.
func (v Visibility) Valid() bool {
	return v == Private || v == Public || v == Unlisted
}

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Public:
		return "public"
	case Unlisted:
		return "unlisted"
	default:
		return "unknown"
	}
}

// ParseVisibility maps public/private/unlisted names onto their state.
func ParseVisibility(name string) (Visibility, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "public":
		return Public, true
	case "private":
		return Private, true
	case "unlisted":
		return Unlisted, true
	}
	return Private, false
}

// Listed reports whether a post in this state appears in listings for a
// viewer with the given admin status.
func (v Visibility) Listed(isAdmin bool) bool {
	return isAdmin || v == Public
}

// Readable reports whether a post in this state may be fetched directly.
func (v Visibility) Readable(isAdmin bool) bool {
	return isAdmin || v != Private
}
