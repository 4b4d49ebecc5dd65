package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/lifecycle"
	"github.com/nvale/beacon/internal/metrics"
)

func TestBuildPortLayouts(t *testing.T) {
	tracker := lifecycle.NewTracker(zerolog.Nop())
	collector := metrics.New()

	cases := []struct {
		name        string
		healthPort  int
		metricsPort int
		wantLabels  []string
	}{
		{"metrics disabled", 8080, 0, []string{"health"}},
		{"merged ports", 8080, 8080, []string{"health/metrics"}},
		{"split ports", 8080, 9091, []string{"health", "metrics"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			servers := Build(zerolog.Nop(), tracker, nil, collector, tc.healthPort, tc.metricsPort)
			if len(servers) != len(tc.wantLabels) {
				t.Fatalf("expected %d servers, got %d", len(tc.wantLabels), len(servers))
			}
			for i, label := range tc.wantLabels {
				if servers[i].Label() != label {
					t.Fatalf("expected label %q, got %q", label, servers[i].Label())
				}
			}
		})
	}
}

func TestBindFailsOnOccupiedPort(t *testing.T) {
	occupied, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()
	port := occupied.Addr().(*net.TCPAddr).Port

	servers := Build(zerolog.Nop(), lifecycle.NewTracker(zerolog.Nop()), nil, nil, port, 0)
	if err := servers[0].Bind(); err == nil {
		servers[0].Close()
		t.Fatalf("expected bind error on occupied port %d", port)
	}
}

func TestServeAndShutdownRoundTrip(t *testing.T) {
	tracker := lifecycle.NewTracker(zerolog.Nop())
	tracker.Transition(lifecycle.StateReady, "test")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	servers := Build(zerolog.Nop(), tracker, nil, metrics.New(), 8080, 8080)
	srv := servers[0]
	srv.BindTo(listener)
	srv.Serve()

	base := fmt.Sprintf("http://127.0.0.1:%d", srv.Port())

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.StatusCode)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if _, err := http.Get(base + "/health"); err == nil {
		t.Fatalf("expected request to fail after shutdown")
	}
}
