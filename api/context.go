package api

import (
	"context"

	"github.com/rpupo63/personal-blog-backend/auth"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the resolved caller to the context
func ctxWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ctxGetIdentity returns the caller, or nil for anonymous requests
func ctxGetIdentity(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}

// ctxIsAdmin reports whether the caller is the configured admin
func ctxIsAdmin(ctx context.Context) bool {
	identity := ctxGetIdentity(ctx)
	return identity != nil && identity.IsAdmin
}
