package auth

import (
	"context"

	"github.com/google/uuid"
)

// AuthType identifies how a request was authenticated
type AuthType string

const (
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeJWT    AuthType = "jwt"
)

// SystemSubject is the subject of requests authenticated with the API key
const SystemSubject = "system"

// Principal holds the authenticated caller
type Principal struct {
	Subject  string
	AuthType AuthType
	// TenantID is the tenant a dashboard token is scoped to; nil for system callers
	TenantID *uuid.UUID
}

// IsSystem reports whether the caller used the system API key
func (p *Principal) IsSystem() bool {
	return p.AuthType == AuthTypeAPIKey
}

// CanAccessTenant checks if the caller may read or act on tenantID
func (p *Principal) CanAccessTenant(tenantID uuid.UUID) bool {
	if p.IsSystem() {
		return true
	}
	return p.TenantID != nil && *p.TenantID == tenantID
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal adds the principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the principal from the context
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}
