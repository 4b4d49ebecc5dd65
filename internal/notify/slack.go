package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/nvale/beacon/internal/lifecycle"
)

// SlackNotifier posts lifecycle transitions to a Slack incoming webhook.
type SlackNotifier struct {
	logger     zerolog.Logger
	webhookURL string
	timing     timingConfig
	poster     *httpPoster
}

// SlackOption customizes SlackNotifier behavior.
type SlackOption func(*SlackNotifier)

// WithSlackTiming overrides timing parameters (primarily for testing).
func WithSlackTiming(rateInterval time.Duration, rateBurst int, backoffInitial, backoffMax, backoffMaxElapsed time.Duration) SlackOption {
	return func(s *SlackNotifier) {
		s.timing.rateInterval = rateInterval
		s.timing.rateBurst = rateBurst
		s.timing.backoffInitial = backoffInitial
		s.timing.backoffMax = backoffMax
		s.timing.backoffMaxElapsed = backoffMaxElapsed
	}
}

// NewSlackNotifier creates a Slack notifier or a noop notifier when the webhook is empty.
func NewSlackNotifier(logger zerolog.Logger, webhookURL string, opts ...SlackOption) Notifier {
	if webhookURL == "" {
		return NewNoop(logger, "slack webhook not configured; notifications disabled")
	}

	notifier := &SlackNotifier{
		logger:     logger,
		webhookURL: webhookURL,
		timing:     defaultTiming,
	}

	for _, opt := range opts {
		opt(notifier)
	}

	notifier.poster = newHTTPPoster(logger, "slack", webhookURL, "application/json", notifier.timing)

	return notifier
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, service string, change lifecycle.Change) error {
	if err := n.poster.waitForRateLimit(ctx); err != nil {
		return err
	}

	message := buildSlackMessage(service, change)
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	if err := n.poster.postWithRetry(ctx, payload); err != nil {
		return err
	}

	n.logger.Debug().
		Str("service", service).
		Str("to", string(change.To)).
		Msg("slack notification sent")

	return nil
}

func buildSlackMessage(service string, change lifecycle.Change) slack.WebhookMessage {
	summary := fmt.Sprintf("Service %s: %s → %s", service, stateLabel(change.From), stateLabel(change.To))

	header := slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", summary, false, false))
	contextBlock := slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("Service: *%s*", service), false, false),
		slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("At: %s", change.At.Format(time.RFC3339)), false, false),
	)

	body := fmt.Sprintf("*%s*: `%s` → `%s`", service, stateLabel(change.From), stateLabel(change.To))
	var fields []*slack.TextBlockObject
	if change.Reason != "" {
		fields = append(fields, slack.NewTextBlockObject("mrkdwn", "*Reason:*\n"+change.Reason, false, false))
	}
	section := slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", body, false, false), fields, nil)

	blockSet := slack.Blocks{BlockSet: []slack.Block{header, contextBlock, section}}
	return slack.WebhookMessage{
		Text:   summary,
		Blocks: &blockSet,
	}
}

func stateLabel(state lifecycle.State) string {
	if state == "" {
		return "UNKNOWN"
	}
	return string(state)
}
