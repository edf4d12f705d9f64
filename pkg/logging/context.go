package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
	// requestIDKey is the context key for request ID.
	requestIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx returns a logger from the context or the default logger.
// This is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRequestID adds a request ID to the context for tracing.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	logger := FromContext(ctx)
	newLogger := logger.With().Str("request_id", requestID).Logger()
	return WithLogger(ctx, &newLogger)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := FromContext(ctx)
	newLogger := addField(logger.With(), key, value).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithSeries adds FRED series context to the logger.
func WithSeries(ctx context.Context, seriesID string) context.Context {
	return WithField(ctx, "series_id", seriesID)
}

// WithJob adds job context to the logger.
func WithJob(ctx context.Context, jobID string) context.Context {
	return WithField(ctx, "job_id", jobID)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// addField adds a field to the logger context based on its type.
func addField(lctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return lctx.Str(key, v)
	case int:
		return lctx.Int(key, v)
	case int64:
		return lctx.Int64(key, v)
	case float64:
		return lctx.Float64(key, v)
	case bool:
		return lctx.Bool(key, v)
	case error:
		if key == "error" || key == "err" {
			return lctx.Err(v)
		}
		return lctx.Str(key, v.Error())
	default:
		return lctx.Interface(key, v)
	}
}
