// Package obscontext carries correlation identifiers through request and
// job contexts so logs and traces can be joined.
package obscontext

import (
	"context"
	"strings"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	jobNameKey   contextKey = "job_name"
	seuCodeKey   contextKey = "seu_code"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func WithJobName(ctx context.Context, job string) context.Context {
	return context.WithValue(ctx, jobNameKey, strings.TrimSpace(job))
}

func JobNameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(jobNameKey).(string); ok {
		return v
	}
	return ""
}

func WithSEUCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, seuCodeKey, strings.TrimSpace(code))
}

func SEUCodeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(seuCodeKey).(string); ok {
		return v
	}
	return ""
}
