// Package auth issues and verifies the blog's session tokens and exchanges
// Google identity tokens for them.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Claims is the identity carried inside a session token.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

type tokenClaims struct {
	Claims
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue signs claims into a token that expires after TokenTTL.
func (t *TokenIssuer) Issue(claims Claims) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("token secret is empty")
	}

	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Bad signatures, expired tokens
// and garbage all yield (nil, false).
func (t *TokenIssuer) Verify(tokenString string) (*Claims, bool) {
	if tokenString == "" || len(t.secret) == 0 {
		return nil, false
	}

	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, false
	}

	claims := parsed.Claims
	return &claims, true
}

// TokenFromHeader extracts the token from an "Authorization: Bearer" value.
func TokenFromHeader(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
