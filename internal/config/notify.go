package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WebhookTarget represents a single named webhook destination.
type WebhookTarget struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Template string `yaml:"template,omitempty"`
}

// NotifySettings is the parsed YAML structure for notification tuning:
// dry_run, webhook_template, webhooks: [{name, url, template}].
type NotifySettings struct {
	DryRun          bool            `yaml:"dry_run"`
	WebhookTemplate string          `yaml:"webhook_template,omitempty"`
	Webhooks        []WebhookTarget `yaml:"webhooks,omitempty"`
}

// LoadNotifyFile parses a YAML notification settings file from the given
// path. Returns nil if path is empty (no settings file).
func LoadNotifyFile(path string) (*NotifySettings, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notify file: %w", err)
	}

	var settings NotifySettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse notify file: %w", err)
	}

	if err := validateWebhooks(settings.Webhooks); err != nil {
		return nil, err
	}

	return &settings, nil
}

func validateWebhooks(targets []WebhookTarget) error {
	seen := make(map[string]bool)

	for i, target := range targets {
		if target.Name == "" {
			return fmt.Errorf("webhook %d: name is required", i)
		}

		if target.URL == "" {
			return fmt.Errorf("webhook %q: url is required", target.Name)
		}

		if err := validateURL(target.URL, "url"); err != nil {
			return fmt.Errorf("webhook %q: %w", target.Name, err)
		}

		if seen[target.Name] {
			return fmt.Errorf("webhook %q: duplicate name", target.Name)
		}
		seen[target.Name] = true
	}

	return nil
}
