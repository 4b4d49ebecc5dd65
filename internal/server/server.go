package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/healthcheck"
	"github.com/nvale/beacon/internal/lifecycle"
	"github.com/nvale/beacon/internal/metrics"
)

const readHeaderTimeout = 5 * time.Second

// Server is one HTTP listener with its handler. Binding is a separate step
// from serving so the caller can treat a failed bind as fatal before any
// goroutine starts.
type Server struct {
	logger   zerolog.Logger
	label    string
	port     int
	server   *http.Server
	listener net.Listener
}

// Build assembles the HTTP servers for the given port configuration,
// merging health and metrics onto one listener when their ports collide.
// metricsPort 0 disables the metrics surface.
func Build(logger zerolog.Logger, reader lifecycle.Reader, observe healthcheck.Observer, collector *metrics.Metrics, healthPort, metricsPort int) []*Server {
	if metricsPort == healthPort && metricsPort != 0 {
		mux := http.NewServeMux()
		registerHealthRoute(mux, reader, observe)
		registerMetricsRoute(mux, collector)
		return []*Server{newServer(logger, "health/metrics", healthPort, mux)}
	}

	mux := http.NewServeMux()
	registerHealthRoute(mux, reader, observe)
	servers := []*Server{newServer(logger, "health", healthPort, mux)}

	if metricsPort > 0 {
		metricsMux := http.NewServeMux()
		registerMetricsRoute(metricsMux, collector)
		servers = append(servers, newServer(logger, "metrics", metricsPort, metricsMux))
	}

	return servers
}

func registerHealthRoute(mux *http.ServeMux, reader lifecycle.Reader, observe healthcheck.Observer) {
	mux.HandleFunc("/health", healthcheck.Handler(reader, observe))
}

func registerMetricsRoute(mux *http.ServeMux, collector *metrics.Metrics) {
	if collector == nil {
		return
	}
	mux.Handle("/metrics", collector.Handler())
}

func newServer(logger zerolog.Logger, label string, port int, handler http.Handler) *Server {
	return &Server{
		logger: logger,
		label:  label,
		port:   port,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Label names this server in logs.
func (s *Server) Label() string {
	return s.label
}

// Bind opens the listening socket. An already-bound port surfaces here.
func (s *Server) Bind() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// BindTo adopts an existing listener instead of opening one.
func (s *Server) BindTo(listener net.Listener) {
	s.listener = listener
}

// Port returns the bound port, or the configured port before binding.
func (s *Server) Port() int {
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.port
}

// Serve starts serving on the bound listener in a background goroutine.
// Must be called after a successful Bind.
func (s *Server) Serve() {
	go func() {
		s.logger.Info().Str("server", s.label).Int("port", s.Port()).Msg("http server starting")
		if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Str("server", s.label).Int("port", s.Port()).Msg("http server failed")
		}
	}()
}

// Shutdown stops accepting new connections and waits for in-flight
// requests until ctx expires. Returns context.DeadlineExceeded when the
// deadline passes with requests still in flight.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Close releases the listener without waiting for in-flight requests.
func (s *Server) Close() error {
	return s.server.Close()
}
