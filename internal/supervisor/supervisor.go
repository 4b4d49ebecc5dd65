package supervisor

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/config"
	"github.com/nvale/beacon/internal/lifecycle"
	"github.com/nvale/beacon/internal/metrics"
	"github.com/nvale/beacon/internal/notify"
	"github.com/nvale/beacon/internal/server"
	"github.com/nvale/beacon/internal/service"
)

// Ticker is the minimal interface needed for driving the liveness poll loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

// Supervisor owns the process lifecycle: it binds the listening port,
// hosts the domain service, polls its liveness, and coordinates graceful
// shutdown. It is the single writer of the lifecycle state.
type Supervisor struct {
	logger        zerolog.Logger
	cfg           config.Config
	svc           service.Service
	tracker       *lifecycle.Tracker
	collector     *metrics.Metrics
	notifier      notify.Notifier
	listener      net.Listener
	tickerFactory func(time.Duration) Ticker
}

// Option customizes supervisor behavior.
type Option func(*Supervisor)

// WithTickerFactory overrides how liveness poll tickers are created.
func WithTickerFactory(factory func(time.Duration) Ticker) Option {
	return func(s *Supervisor) {
		s.tickerFactory = factory
	}
}

// WithListener makes the health server adopt an existing listener instead
// of binding the configured port.
func WithListener(listener net.Listener) Option {
	return func(s *Supervisor) {
		s.listener = listener
	}
}

// WithNotifier delivers lifecycle transitions to the given notifier.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Supervisor) {
		s.notifier = notifier
	}
}

// WithMetrics records probe, transition, and poll metrics.
func WithMetrics(collector *metrics.Metrics) Option {
	return func(s *Supervisor) {
		s.collector = collector
	}
}

// New constructs a Supervisor hosting the given service.
func New(logger zerolog.Logger, cfg config.Config, svc service.Service, tracker *lifecycle.Tracker, opts ...Option) *Supervisor {
	s := &Supervisor{
		logger:  logger,
		cfg:     cfg,
		svc:     svc,
		tracker: tracker,
		tickerFactory: func(d time.Duration) Ticker {
			return timeTicker{ticker: time.NewTicker(d)}
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run drives the full lifecycle and blocks until ctx is canceled (the
// termination signal) and shutdown completes. A non-nil return is fatal:
// *BindError or *StartupFault, which the caller maps to a non-zero exit.
func (s *Supervisor) Run(ctx context.Context) error {
	changes := make(chan lifecycle.Change, 8)
	s.tracker.OnChange(func(change lifecycle.Change) {
		s.collector.ObserveTransition(change)
		select {
		case changes <- change:
		default:
			s.logger.Warn().Str("to", string(change.To)).Msg("notification queue full, dropping transition")
		}
	})

	servers, err := s.bindServers()
	if err != nil {
		return err
	}
	for _, srv := range servers {
		srv.Serve()
	}

	notifyCtx, cancelNotify := context.WithCancel(context.Background())
	defer cancelNotify()
	var notifyWG sync.WaitGroup
	notifyWG.Add(1)
	go s.deliverNotifications(notifyCtx, &notifyWG, changes)

	if err := s.svc.Init(ctx); err != nil {
		if ctx.Err() != nil {
			// Termination raced initialization; this is a shutdown, not a fault.
			s.shutdown(servers, changes, &notifyWG, cancelNotify)
			return nil
		}
		fault := &StartupFault{Err: err}
		s.logger.Error().Err(err).Msg("service initialization failed")
		for _, srv := range servers {
			_ = srv.Close()
		}
		close(changes)
		cancelNotify()
		return fault
	}

	s.tracker.Transition(lifecycle.StateReady, "service initialized")
	s.logger.Info().Int("port", servers[0].Port()).Msg("service ready")

	runDone := make(chan error, 1)
	go func() {
		runDone <- s.svc.Run(ctx)
	}()

	s.pollLiveness(ctx, runDone)

	s.shutdown(servers, changes, &notifyWG, cancelNotify)
	return nil
}

// bindServers builds and binds the HTTP servers. All listeners are closed
// again if any bind fails, so no socket is left open behind a fatal error.
func (s *Supervisor) bindServers() ([]*server.Server, error) {
	servers := server.Build(s.logger, s.tracker, s.collector.ObserveProbe, s.collector, s.cfg.Port, s.cfg.MetricsPort)

	for i, srv := range servers {
		if i == 0 && s.listener != nil {
			srv.BindTo(s.listener)
			continue
		}
		if err := srv.Bind(); err != nil {
			for _, bound := range servers[:i] {
				_ = bound.Close()
			}
			return nil, &BindError{Port: srv.Port(), Err: err}
		}
	}

	return servers, nil
}

// pollLiveness runs the liveness poll loop until ctx is canceled. A
// degraded report or a premature service exit moves the process to
// Degraded; it keeps running so the orchestrator sees the unhealthy
// endpoint and decides the restart.
func (s *Supervisor) pollLiveness(ctx context.Context, runDone <-chan error) {
	ticker := s.tickerFactory(s.cfg.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-runDone:
			if ctx.Err() != nil {
				return
			}
			fault := &RuntimeFault{Err: err}
			if err == nil {
				fault.Err = errors.New("service exited before shutdown")
			}
			s.logger.Error().Err(fault).Msg("service run ended prematurely")
			s.tracker.Transition(lifecycle.StateDegraded, fault.Error())
			// Keep answering health probes; nothing left to poll.
			<-ctx.Done()
			return
		case <-ticker.C():
			start := time.Now()
			liveness := s.svc.Liveness()
			s.collector.ObserveLivenessPoll(time.Since(start))
			if liveness == service.LivenessDegraded {
				s.tracker.Transition(lifecycle.StateDegraded, "service reported degraded liveness")
			}
		}
	}
}

// shutdown flips the state so health probes immediately report unhealthy,
// keeps the listeners open for the grace period so the orchestrator sees
// 503 rather than refused connections while it drains, then stops
// accepting and abandons whatever is still in flight.
func (s *Supervisor) shutdown(servers []*server.Server, changes chan lifecycle.Change, notifyWG *sync.WaitGroup, cancelNotify context.CancelFunc) {
	s.tracker.Transition(lifecycle.StateShuttingDown, "termination signal received")
	close(changes)

	start := time.Now()
	deadline := start.Add(s.cfg.GracePeriod)

	// Drain window: probes issued after the signal are still answered
	// (unhealthy), and in-flight requests get the window to complete.
	// Queued notifications deliver concurrently during the same window.
	if wait := time.Until(deadline); wait > 0 {
		time.Sleep(wait)
	}

	shutdownCtx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				timeout := &ShutdownTimeout{Grace: s.cfg.GracePeriod}
				s.logger.Warn().Str("server", srv.Label()).Msg(timeout.Error())
				continue
			}
			s.logger.Error().Err(err).Str("server", srv.Label()).Msg("http server shutdown failed")
		}
	}

	cancelNotify()
	notifyWG.Wait()

	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("shutdown complete")
}

// deliverNotifications drains transition changes to the notifier. Delivery
// failures are logged and counted, never escalated: liveness reporting
// must not depend on notification delivery.
func (s *Supervisor) deliverNotifications(ctx context.Context, wg *sync.WaitGroup, changes <-chan lifecycle.Change) {
	defer wg.Done()
	for change := range changes {
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, s.cfg.ServiceName, change); err != nil {
			s.collector.IncNotifyDeliveryErrors()
			s.logger.Error().Err(err).
				Str("to", string(change.To)).
				Msg("notification delivery failed")
		}
	}
}
