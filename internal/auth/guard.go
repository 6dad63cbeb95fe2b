package auth

import (
	"context"
	"net/http"

	"github.com/lumiforge/mediavault-backend/internal/jwt"
)

// Identity is the caller as asserted by the auth provider.
type Identity struct {
	UserID string
	Email  string
}

// Guard answers "who is calling?" for an inbound request. It has no side effects.
type Guard struct {
	tokens jwt.TokenManager
}

func NewGuard(tokens jwt.TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

// CurrentIdentity returns the caller identity carried by the bearer token, or false.
func (g *Guard) CurrentIdentity(r *http.Request) (*Identity, bool) {
	if g == nil || g.tokens == nil {
		return nil, false
	}

	tokenString, err := jwt.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, false
	}

	claims, err := g.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, false
	}

	return &Identity{UserID: claims.UserID(), Email: claims.Email}, true
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the auth middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
