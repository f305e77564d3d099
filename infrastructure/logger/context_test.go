package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	base := mustTestLogger(t)
	enriched := base.With(logger.String("component", "upgrade"))

	ctx := logger.WithContext(context.Background(), enriched)
	if got := logger.FromContext(ctx); got != enriched {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())
	if a == nil || b == nil {
		t.Fatal("expected non-nil fallback logger")
	}
	if a != b {
		t.Error("expected the same fallback instance on every call")
	}

	a.Warn("fallback usable", logger.String("key", "value"))
}

func TestNop_WithReturnsSelf(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	if nop.With(logger.Int("n", 1)) != nop {
		t.Error("NoOpLogger.With should return the receiver")
	}
	if err := nop.Sync(); err != nil {
		t.Errorf("Sync() = %v, want nil", err)
	}
}

func mustTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return l
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if _, ok := logger.Lookup(context.Background()); ok {
		t.Error("Lookup on an empty context reported a logger")
	}

	nop := logger.NewNop()
	got, ok := logger.Lookup(logger.WithContext(context.Background(), nop))
	if !ok || got != nop {
		t.Error("Lookup did not return the stored logger")
	}
}
