package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	l := New("json", "bogus-level")
	if l == nil {
		t.Fatalf("expected non-nil logger")
	}
	if !l.Slog().Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("expected info level to be enabled for an unknown level name")
	}
	if l.Slog().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected debug level to be disabled for an unknown level name")
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := New("text", "debug")
	ctx := IntoContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatalf("expected the attached logger back")
	}
}

func TestFromContextWithoutLoggerIsNop(t *testing.T) {
	got := FromContext(context.Background())
	if got == nil {
		t.Fatalf("expected a non-nil fallback logger")
	}
	got.InfoContext(context.Background(), "should not panic")
}

func TestWithAddsAttributesWithoutMutatingParent(t *testing.T) {
	base := NewNop()
	child := base.With("request_id", "abc123")
	if base == child {
		t.Fatalf("expected With to return a distinct logger")
	}
}
