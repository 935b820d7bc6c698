package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	APIBaseURL      string
	APITimeout      time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	SessionCapacity int

	// Cloudinary image hosting. Missing values are reported when an upload
	// is attempted, not at startup.
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryTimeout      time.Duration

	// Peak change events.
	PeakEventsEnabled bool
	KafkaBrokers      []string
	KafkaPeakTopic    string
}

// CloudinarySigned reports whether API credentials are configured, which
// selects signed uploads over the unsigned upload preset.
func (c *Config) CloudinarySigned() bool {
	return c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parsePositiveDuration("API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cloudinaryTimeout, err := parsePositiveDuration("CLOUDINARY_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	sessionCapacity, err := parseSessionCapacity()
	if err != nil {
		return nil, err
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	eventsEnabled := brokers != ""
	if v := os.Getenv("PEAK_EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		APIBaseURL:      sharedcfg.EnvOrDefault("API_BASE_URL", "http://localhost:3000"),
		APITimeout:      apiTimeout,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		SessionCapacity: sessionCapacity,

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadPreset: os.Getenv("CLOUDINARY_UPLOAD_PRESET"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryTimeout:      cloudinaryTimeout,

		PeakEventsEnabled: eventsEnabled,
		KafkaPeakTopic:    sharedcfg.EnvOrDefault("KAFKA_PEAK_TOPIC", "peak-changes"),
	}
	if brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid API_BASE_URL")
	}
	if cfg.PeakEventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("PEAK_EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.PeakEventsEnabled && cfg.KafkaPeakTopic == "" {
		return nil, errors.New("KAFKA_PEAK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseSessionCapacity() (int, error) {
	s := os.Getenv("SESSION_CAPACITY")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid SESSION_CAPACITY")
	}
	return n, nil
}
