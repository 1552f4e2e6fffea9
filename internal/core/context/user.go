package context

import (
	"context"
	"slices"
)

// Permissions checked by the HTTP API when token auth is enabled.
const (
	PermPrefixRead  = "prefix:read"
	PermPrefixWrite = "prefix:write"
	PermIDAllocate  = "ids:allocate"
)

// Principal is the authenticated caller of a guarded endpoint.
type Principal struct {
	Subject     string
	Permissions []string
	IsAdmin     bool
}

type principalKey struct{}

// WithPrincipal adds Principal to context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns Principal from context.
func GetPrincipal(ctx context.Context) *Principal {
	if v, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return v
	}
	return nil
}

// GetSubject returns the principal subject or empty string.
func GetSubject(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.Subject
	}
	return ""
}

// HasPermission reports whether p holds perm. Admins hold every permission.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	return p.IsAdmin || slices.Contains(p.Permissions, perm)
}
