package reqctx

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type testClaims struct {
	userID  uuid.UUID
	expired bool
}

func (c testClaims) GetUserID() uuid.UUID     { return c.userID }
func (c testClaims) GetSessionID() *uuid.UUID { return nil }
func (c testClaims) GetTokenType() string     { return "access" }
func (c testClaims) IsExpired() bool          { return c.expired }

func TestRequestMetaRoundTrip(t *testing.T) {
	meta := &RequestMeta{
		RequestID:   "req-1",
		ClientIP:    "10.0.0.1",
		UserAgent:   "test",
		RequestedAt: time.Now(),
	}
	ctx := WithRequestMeta(context.Background(), meta)

	got, ok := RequestMetaFromContext(ctx)
	if !ok || got != meta {
		t.Fatal("stored meta not returned")
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Errorf("RequestIDFromContext = %q", RequestIDFromContext(ctx))
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context must yield empty request id")
	}
}

func TestClaimsAndAuthentication(t *testing.T) {
	bg := context.Background()
	if IsAuthenticated(bg) {
		t.Error("empty context must not be authenticated")
	}
	if _, ok := UserIDFromContext(bg); ok {
		t.Error("empty context must not carry a user id")
	}

	uid := uuid.New()
	ctx := WithClaims(bg, testClaims{userID: uid})
	if !IsAuthenticated(ctx) {
		t.Error("valid claims must authenticate")
	}
	got, ok := UserIDFromContext(ctx)
	if !ok || got != uid {
		t.Errorf("UserIDFromContext = %v, %v", got, ok)
	}

	stale := WithClaims(bg, testClaims{userID: uid, expired: true})
	if IsAuthenticated(stale) {
		t.Error("expired claims must not authenticate")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	info := &TraceInfo{TraceID: "0af7651916cd43dd8448eb211c80319c", SpanID: "b7ad6b7169203331", Sampled: true}
	ctx := WithTrace(context.Background(), info)

	got, ok := TraceFromContext(ctx)
	if !ok || got != info {
		t.Fatal("stored trace not returned")
	}
	if TraceIDFromContext(ctx) != info.TraceID {
		t.Errorf("TraceIDFromContext = %q", TraceIDFromContext(ctx))
	}
	if TraceIDFromContext(context.Background()) != "" {
		t.Error("empty context must yield empty trace id")
	}
}
