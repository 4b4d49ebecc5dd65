package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPort             = "PORT"
	envGracePeriod      = "BEACON_GRACE_PERIOD"
	envLivenessInterval = "BEACON_LIVENESS_INTERVAL"
	envMetricsPort      = "BEACON_METRICS_PORT"
	envSlackWebhookURL  = "BEACON_SLACK_WEBHOOK_URL"
	envWebhookURL       = "BEACON_WEBHOOK_URL"
	envNotifyConfig     = "BEACON_NOTIFY_CONFIG"
	envServiceName      = "BEACON_SERVICE_NAME"
	envLogLevel         = "BEACON_LOG_LEVEL"
)

const (
	defaultPort             = 8080
	defaultGracePeriod      = 5 * time.Second
	defaultLivenessInterval = 10 * time.Second
	defaultServiceName      = "beacon"
	defaultLogLevel         = "info"

	// Ports below 1024 require elevated privileges inside the container;
	// binding one is always a misconfiguration for this service.
	minUnprivilegedPort = 1024
	maxPort             = 65535
)

// Config describes runtime configuration loaded from the environment.
type Config struct {
	Port             int
	GracePeriod      time.Duration
	LivenessInterval time.Duration
	MetricsPort      int
	SlackWebhookURL  string
	WebhookURL       string
	NotifyConfigPath string
	ServiceName      string
	LogLevel         string
}

// Load reads configuration from environment variables and a local .env file
// if present. Existing environment variables take precedence over values in
// .env. Validation failures are returned as errors; the caller treats them
// as fatal.
func Load() (Config, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             defaultPort,
		GracePeriod:      defaultGracePeriod,
		LivenessInterval: defaultLivenessInterval,
		ServiceName:      defaultServiceName,
		LogLevel:         defaultLogLevel,
	}

	if value, ok := lookupTrimmed(envPort); ok {
		port, err := parsePort(value, envPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if value, ok := lookupTrimmed(envGracePeriod); ok {
		grace, err := parsePositiveDuration(value, envGracePeriod)
		if err != nil {
			return Config{}, err
		}
		cfg.GracePeriod = grace
	}

	if value, ok := lookupTrimmed(envLivenessInterval); ok {
		interval, err := parsePositiveDuration(value, envLivenessInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.LivenessInterval = interval
	}

	if value, ok := lookupTrimmed(envMetricsPort); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envMetricsPort, err)
		}
		if port != 0 {
			port, err = parsePort(value, envMetricsPort)
			if err != nil {
				return Config{}, err
			}
		}
		cfg.MetricsPort = port
	}

	if value, ok := lookupTrimmed(envSlackWebhookURL); ok {
		if err := validateURL(value, envSlackWebhookURL); err != nil {
			return Config{}, err
		}
		cfg.SlackWebhookURL = value
	}

	if value, ok := lookupTrimmed(envWebhookURL); ok {
		if err := validateURL(value, envWebhookURL); err != nil {
			return Config{}, err
		}
		cfg.WebhookURL = value
	}

	if value, ok := lookupTrimmed(envNotifyConfig); ok {
		cfg.NotifyConfigPath = value
	}

	if value, ok := lookupTrimmed(envServiceName); ok && value != "" {
		cfg.ServiceName = value
	}

	if value, ok := lookupTrimmed(envLogLevel); ok && value != "" {
		cfg.LogLevel = value
	}

	return cfg, nil
}

func parsePort(value, name string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if port < minUnprivilegedPort || port > maxPort {
		return 0, fmt.Errorf("%s must be an unprivileged port in [%d, %d], got %d",
			name, minUnprivilegedPort, maxPort, port)
	}
	return port, nil
}

func parsePositiveDuration(value, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", name)
	}
	return d, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

func validateURL(value, name string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid %s: must include scheme and host", name)
	}
	return nil
}
