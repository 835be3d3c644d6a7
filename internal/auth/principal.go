package auth

import (
	"context"

	"blogapi/internal/models"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	// ProfileID is the token subject. Zero for a local login whose user has
	// no profile yet.
	ProfileID int64
	// User is set by the local strategy only.
	User *models.User
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
