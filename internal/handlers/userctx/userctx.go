package userctx

import (
	"context"
)

type ctxKey string

const tokenKey ctxKey = "bearer-token"

// Create a new context with the raw bearer token presented by client
func NewToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Extract the bearer token from the context
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
