package lifecycle_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/segmenter/pkg/lifecycle"
)

type checker bool

func (c checker) Ready() bool { return bool(c) }

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
}

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() error {
			count.Add(1)
			return nil
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestFailedStartupHookBlocksReadiness(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("ping failed")

	lc.OnStartup(func() error { return nil })
	lc.OnStartup(func() error { return boom })
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("should not be ready when a startup hook fails")
	}
	if !errors.Is(lc.Err(), boom) {
		t.Errorf("Err() = %v, want %v", lc.Err(), boom)
	}
}

func TestRequiredCheckers(t *testing.T) {
	tests := []struct {
		name   string
		checks []checker
		want   bool
	}{
		{"none", nil, true},
		{"all ready", []checker{true, true}, true},
		{"one not ready", []checker{true, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()
			for _, c := range tt.checks {
				lc.Require(c)
			}
			lc.WaitForStartup()

			if got := lc.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}

func TestContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}
