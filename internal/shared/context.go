package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the request session so handlers and services
// can read the current cashier without threading it explicitly.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session; nil when the request carried
// no session cookie.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
