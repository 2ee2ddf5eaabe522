package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx retrieves the logger from the context.
// If no logger is found, the global logger is returned.
func Ctx(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// ForSession returns a child of the global logger tagged with the chat
// session id and endpoint.
func ForSession(sessionID, endpoint string) zerolog.Logger {
	return L().With().
		Str(FieldSessionID, sessionID).
		Str(FieldEndpoint, endpoint).
		Logger()
}
