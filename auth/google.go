package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var ErrInvalidGoogleToken = errors.New("invalid google identity token")

// GoogleProfile is the subset of a Google ID token payload the blog uses.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates a Google ID token for the given audience.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken, audience string) (*GoogleProfile, error)
}

type idTokenVerifier struct {
	validator *idtoken.Validator
}

// NewGoogleVerifier returns a verifier that checks signatures against
// Google's published certificates.
func NewGoogleVerifier(ctx context.Context, client *http.Client) (GoogleVerifier, error) {
	opts := []option.ClientOption{}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}
	validator, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create google id token validator: %w", err)
	}
	return &idTokenVerifier{validator: validator}, nil
}

func (v *idTokenVerifier) Verify(ctx context.Context, idToken, audience string) (*GoogleProfile, error) {
	payload, err := v.validator.Validate(ctx, idToken, audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	return profileFromClaims(payload.Subject, payload.Claims), nil
}

func profileFromClaims(subject string, claims map[string]interface{}) *GoogleProfile {
	str := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	return &GoogleProfile{
		Subject: subject,
		Email:   strings.ToLower(strings.TrimSpace(str("email"))),
		Name:    str("name"),
		Picture: str("picture"),
	}
}

// ClaimsFromGoogle maps a verified Google profile onto session claims.
func ClaimsFromGoogle(p *GoogleProfile, adminEmail string) Claims {
	email := strings.ToLower(p.Email)

	name := p.Name
	if name == "" {
		name = email
	}
	if name == "" {
		name = "User"
	}

	id := p.Subject
	if id == "" {
		id = email
	}

	username := email
	if username == "" {
		username = name
	}

	return Claims{
		ID:       id,
		Username: username,
		Email:    email,
		Name:     name,
		Picture:  p.Picture,
		IsAdmin:  IsAdminEmail(adminEmail, email),
	}
}
