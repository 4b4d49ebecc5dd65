package service

import (
	"context"
	"testing"
	"time"
)

func TestIdleLifecycle(t *testing.T) {
	idle := NewIdle()

	if err := idle.Init(context.Background()); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
	if got := idle.Liveness(); got != LivenessHealthy {
		t.Fatalf("expected healthy, got %s", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- idle.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("idle service did not stop after cancel")
	}
}
