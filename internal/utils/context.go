package utils

import (
	"context"
)

type contextKey string

const ContextOriginKey contextKey = "origin"

// WithOrigin stores the browser-context id on ctx.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, ContextOriginKey, origin)
}

func GetOriginFromContext(ctx context.Context) (string, bool) {
	origin := ctx.Value(ContextOriginKey)
	originStr, ok := origin.(string)
	return originStr, ok && originStr != ""
}
