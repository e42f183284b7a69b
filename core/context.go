package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	skipCacheKey      contextKey = "skipCache"
)

// WithSuppressHeader marks the context so executors skip the banner line.
// The HTTP server and MCP tools use it since their output is machine-read.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithSkipCache makes GetAnalysisResults bypass the result cache for this call.
func WithSkipCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheKey, true)
}

// shouldSkipCache returns whether the result cache should be bypassed
func shouldSkipCache(ctx context.Context) bool {
	val := ctx.Value(skipCacheKey)
	if val == nil {
		return false
	}
	skip, ok := val.(bool)
	return ok && skip
}
