package api

import (
	"context"
)

type contextKey string

const observerContextKey contextKey = "observer"

// ObserverFromContext extracts the observer label from context
func ObserverFromContext(ctx context.Context) string {
	observer, _ := ctx.Value(observerContextKey).(string)
	return observer
}

// ContextWithObserver adds the observer label to context
func ContextWithObserver(ctx context.Context, observer string) context.Context {
	return context.WithValue(ctx, observerContextKey, observer)
}
