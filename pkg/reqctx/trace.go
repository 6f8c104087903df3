package reqctx

import "context"

// TraceInfo mirrors the active span's identity so log lines can be
// correlated with traces without importing the tracing stack.
type TraceInfo struct {
	// TraceID is a 32-character hex string (128-bit).
	TraceID string

	// SpanID is a 16-character hex string (64-bit).
	SpanID string

	// Sampled indicates whether this trace is being recorded.
	Sampled bool
}

// WithTrace stores trace info in the context.
func WithTrace(ctx context.Context, trace *TraceInfo) context.Context {
	return context.WithValue(ctx, keyTrace, trace)
}

// TraceFromContext retrieves trace info from the context.
// Returns nil, false if not set.
func TraceFromContext(ctx context.Context) (*TraceInfo, bool) {
	v := ctx.Value(keyTrace)
	if v == nil {
		return nil, false
	}
	trace, ok := v.(*TraceInfo)
	return trace, ok
}

// TraceIDFromContext returns the trace ID, or empty string if not set.
func TraceIDFromContext(ctx context.Context) string {
	trace, ok := TraceFromContext(ctx)
	if !ok || trace == nil {
		return ""
	}
	return trace.TraceID
}
