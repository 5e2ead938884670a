package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context. The session middleware
// does this once per request; handlers only ever read.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context. Returns nil when
// the request never passed through the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
