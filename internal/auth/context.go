package auth

import "context"

type contextKey string

const (
	contextKeyUserID   contextKey = "auth.user_id"
	contextKeyUsername contextKey = "auth.username"
	contextKeyTokenID  contextKey = "auth.token_id"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, userID, username, tokenID string) context.Context {
	ctx = context.WithValue(ctx, contextKeyUserID, userID)
	ctx = context.WithValue(ctx, contextKeyUsername, username)
	ctx = context.WithValue(ctx, contextKeyTokenID, tokenID)
	return ctx
}

// UserIDFromContext extracts the user id from context.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// UsernameFromContext extracts the username from context.
func UsernameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if username, ok := ctx.Value(contextKeyUsername).(string); ok {
		return username
	}
	return ""
}

// TokenIDFromContext extracts the session token id from context.
func TokenIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tokenID, ok := ctx.Value(contextKeyTokenID).(string); ok {
		return tokenID
	}
	return ""
}
