package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvale/beacon/internal/lifecycle"
)

const defaultWebhookTemplate = `{"service":"{{ .Service }}","from":"{{ .From }}","to":"{{ .To }}","reason":{{ toJson .Reason }},"at":"{{ .At.Format "2006-01-02T15:04:05Z07:00" }}"}`

// WebhookPayload is the template context for webhook notifications.
type WebhookPayload struct {
	Service string
	From    lifecycle.State
	To      lifecycle.State
	Reason  string
	At      time.Time
}

// WebhookNotifier sends lifecycle transitions to a generic webhook.
type WebhookNotifier struct {
	logger   zerolog.Logger
	template *template.Template
	poster   *httpPoster
}

// NewWebhookNotifier creates a webhook notifier with the provided template.
// An empty template falls back to a minimal JSON payload.
func NewWebhookNotifier(logger zerolog.Logger, webhookURL string, tmpl string) (*WebhookNotifier, error) {
	if webhookURL == "" {
		return nil, nil
	}
	if tmpl == "" {
		tmpl = defaultWebhookTemplate
	}

	parsed, err := template.New("webhook").Funcs(template.FuncMap{
		"toJson": func(v any) (string, error) {
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(encoded), nil
		},
	}).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse webhook template: %w", err)
	}

	return &WebhookNotifier{
		logger:   logger,
		template: parsed,
		poster:   newHTTPPoster(logger, "webhook", webhookURL, "application/json", defaultTiming),
	}, nil
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, service string, change lifecycle.Change) error {
	if n == nil {
		return nil
	}

	if err := n.poster.waitForRateLimit(ctx); err != nil {
		return err
	}

	payload := WebhookPayload{
		Service: service,
		From:    change.From,
		To:      change.To,
		Reason:  change.Reason,
		At:      change.At,
	}

	var buf bytes.Buffer
	if err := n.template.Execute(&buf, payload); err != nil {
		return fmt.Errorf("render webhook template: %w", err)
	}

	if err := n.poster.postWithRetry(ctx, buf.Bytes()); err != nil {
		return err
	}

	n.logger.Debug().
		Str("service", service).
		Str("to", string(change.To)).
		Msg("webhook notification sent")

	return nil
}
