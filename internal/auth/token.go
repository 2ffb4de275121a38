// Package auth carries the caller's bearer credential through the request
// context. The token is validated upstream; this service only forwards it on
// outbound catalog calls, scoped per request rather than shared state.
package auth

import "context"

type ctxKey struct{}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ctxKey{}).(string)
	return t, ok && t != ""
}
