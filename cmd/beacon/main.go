package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/config"
	"github.com/nvale/beacon/internal/lifecycle"
	"github.com/nvale/beacon/internal/logging"
	"github.com/nvale/beacon/internal/metrics"
	"github.com/nvale/beacon/internal/notify"
	"github.com/nvale/beacon/internal/service"
	"github.com/nvale/beacon/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info")
		fallback.Error().Err(err).Msg("configuration invalid")
		return 1
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.Port).
		Dur("grace_period", cfg.GracePeriod).
		Msg("beacon starting")

	notifier, err := buildNotifier(logger, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("notifier configuration invalid")
		return 1
	}

	tracker := lifecycle.NewTracker(logger)
	collector := metrics.New()

	sup := supervisor.New(logger, cfg, service.NewIdle(), tracker,
		supervisor.WithMetrics(collector),
		supervisor.WithNotifier(notifier),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("beacon exited with fatal error")
		return 1
	}

	logger.Info().Msg("beacon stopped")
	return 0
}

func buildNotifier(logger zerolog.Logger, cfg config.Config) (notify.Notifier, error) {
	settings, err := config.LoadNotifyFile(cfg.NotifyConfigPath)
	if err != nil {
		return nil, err
	}

	var notifiers []notify.Notifier

	notifiers = append(notifiers, notify.NewSlackNotifier(logger, cfg.SlackWebhookURL))

	template := ""
	if settings != nil {
		template = settings.WebhookTemplate
	}
	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(logger, cfg.WebhookURL, template)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, webhook)
	}

	if settings != nil {
		for _, target := range settings.Webhooks {
			tmpl := target.Template
			if tmpl == "" {
				tmpl = template
			}
			webhook, err := notify.NewWebhookNotifier(logger.With().Str("webhook", target.Name).Logger(), target.URL, tmpl)
			if err != nil {
				return nil, err
			}
			notifiers = append(notifiers, webhook)
		}
	}

	var notifier notify.Notifier = notify.NewMultiNotifier(notifiers...)
	if settings != nil && settings.DryRun {
		notifier = notify.NewDryRunNotifier(logger, notifier)
	}
	return notifier, nil
}
