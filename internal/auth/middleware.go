package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/utils"
)

type contextKey string

const identityKey contextKey = "identity"

var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller behind a verified bearer token.
type Identity struct {
	Subject   string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"-"`
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// OIDCVerifier checks ID tokens against an issuer's published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider for %s: %w", issuer, err)
	}
	cfg := &oidc.Config{ClientID: clientID}
	if clientID == "" {
		cfg.SkipClientIDCheck = true
	}
	return &OIDCVerifier{verifier: provider.Verifier(cfg)}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrInvalidToken, err)
	}
	return &Identity{Subject: claims.Sub, Email: claims.Email, Name: claims.Name, ExpiresAt: idToken.Expiry}, nil
}

// NewVerifier picks the verifier for the configured identity source. It
// returns nil when neither an issuer nor a shared secret is configured.
func NewVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (Verifier, error) {
	switch {
	case cfg.OIDCIssuer != "":
		v, err := NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, err
		}
		log.Info("AUTH", fmt.Sprintf("Verifying tokens against issuer %s", cfg.OIDCIssuer))
		return v, nil
	case cfg.JWTSecret != "":
		log.Info("AUTH", "Verifying HS256 tokens with ADMIN_JWT_SECRET")
		return NewHMACVerifier(cfg.JWTSecret), nil
	}
	return nil, nil
}

// Middleware requires a valid bearer token. With a nil verifier every request
// passes; that mode is for local development only.
func Middleware(v Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	if v == nil {
		log.Warn("AUTH", "No OIDC_ISSUER or ADMIN_JWT_SECRET configured, admin routes are open")
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, apperr.Unauthorized(err.Error(), err))
				return
			}

			identity, err := v.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteError(w, apperr.Unauthorized("invalid token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityKey).(*Identity)
	return identity
}

// Helper to extract user ID in handlers
func UserID(ctx context.Context) string {
	if identity := IdentityFrom(ctx); identity != nil {
		return identity.Subject
	}
	return ""
}
