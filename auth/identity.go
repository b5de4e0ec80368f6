package auth

import "strings"

// Identity is the caller resolved from a request's session token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	IsAdmin  bool   `json:"isAdmin"`
}

// IsAdminEmail compares email against the configured admin address. An
// unset admin address matches nobody.
func IsAdminEmail(adminEmail, email string) bool {
	admin := strings.ToLower(strings.TrimSpace(adminEmail))
	candidate := strings.ToLower(strings.TrimSpace(email))
	return admin != "" && candidate != "" && admin == candidate
}

// NewIdentity builds an identity from verified claims. The admin flag inside
// the claims is ignored and recomputed from adminEmail.
func NewIdentity(claims Claims, adminEmail string) *Identity {
	return &Identity{
		ID:       claims.ID,
		Username: claims.Username,
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
		IsAdmin:  IsAdminEmail(adminEmail, claims.Email),
	}
}

// DisplayName is what gets stamped on comments.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Username
}

// Owns reports whether email belongs to this identity, ignoring case.
func (i *Identity) Owns(email string) bool {
	return i.Email != "" && email != "" && strings.EqualFold(i.Email, email)
}
