// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// PrincipalKey is the context key for the acting principal.
type PrincipalKey struct{}

// OpKey is the context key for the operation id shared by audit rows.
type OpKey struct{}

// Principal identifies who is acting: the user, the guild the action came
// from and the roles the user holds there.
type Principal struct {
	GuildID int64
	UserID  int64
	RoleIDs []int64
	// Admin marks a user holding guild management rights in GuildID.
	Admin bool
	// System principals (operator tooling, bootstrap) bypass authorization.
	System bool
}

// SystemPrincipal is used by bootstrap code and the operator CLI when no
// user identity is supplied.
var SystemPrincipal = Principal{System: true}

// WithPrincipal returns a context with the principal embedded.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey{}, p)
}

// PrincipalFromContext returns the principal from context and whether one was set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey{}).(Principal)
	return p, ok
}

// ActorFromContext returns the acting user id, or 0 if not set.
func ActorFromContext(ctx context.Context) int64 {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

// WithOpID returns a context carrying an operation id.
func WithOpID(ctx context.Context, opID string) context.Context {
	return context.WithValue(ctx, OpKey{}, opID)
}

// OpIDFromContext returns the operation id, or empty string if not set.
func OpIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(OpKey{}).(string); ok {
		return v
	}
	return ""
}
