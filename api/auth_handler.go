package api

import (
	"net/http"

	"github.com/rpupo63/personal-blog-backend/auth"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder  Responder
	logger     zerolog.Logger
	tokens     *auth.TokenIssuer
	verifier   auth.GoogleVerifier
	clientID   string
	adminEmail string
}

func newAuthHandler(tokens *auth.TokenIssuer, verifier auth.GoogleVerifier, clientID, adminEmail string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		tokens:     tokens,
		verifier:   verifier,
		clientID:   clientID,
		adminEmail: adminEmail,
	}
}

// googleSignIn exchanges a Google ID token for a session token.
func (h authHandler) googleSignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.clientID == "" {
			h.responder.WriteError(w, errs.NewConfigurationError("GOOGLE_CLIENT_ID"))
			return
		}
		if h.verifier == nil {
			h.responder.WriteError(w, errs.NewConfigurationError("google verifier"))
			return
		}

		req := decodeLenient[googleAuthRequest](r)
		idToken, ok := rawString(req.IDToken)
		if !ok {
			idToken, ok = rawString(req.Credential)
		}
		if !ok {
			idToken, _ = rawString(req.Token)
		}
		if idToken == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("idToken"))
			return
		}

		profile, err := h.verifier.Verify(r.Context(), idToken, h.clientID)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Google token verification failed")
			h.responder.WriteError(w, errs.NewUnauthorizedError("token verification failed"))
			return
		}

		claims := auth.ClaimsFromGoogle(profile, h.adminEmail)
		token, err := h.tokens.Issue(claims)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}

		h.logger.Info().Str("email", claims.Email).Bool("isAdmin", claims.IsAdmin).Msg("Signed in with Google")
		h.responder.WriteJSON(w, googleAuthResponse{
			Token:   token,
			Email:   claims.Email,
			Name:    claims.Name,
			Picture: claims.Picture,
			IsAdmin: claims.IsAdmin,
		})
	}
}

// me reports the caller's profile with a freshly computed admin flag.
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := ctxGetIdentity(r.Context())
		h.responder.WriteJSON(w, meResponse{
			Username: identity.Username,
			Email:    identity.Email,
			Name:     identity.Name,
			Picture:  identity.Picture,
			IsAdmin:  identity.IsAdmin,
		})
	}
}
