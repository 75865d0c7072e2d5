package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	HistorySize        int
	WorkerPoolSize     int
	SendTimeout        time.Duration
	WebhookBackoffBase time.Duration

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	SlackWebhookURL string

	ArchiveDatabaseURL   string
	ArchiveBatchSize     int
	ArchiveFlushInterval time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:             ":8080",
		HistorySize:          1000,
		WorkerPoolSize:       4,
		SendTimeout:          10 * time.Second,
		WebhookBackoffBase:   time.Second,
		SMTPAddr:             os.Getenv("SMTP_ADDR"),
		SMTPUsername:         os.Getenv("SMTP_USERNAME"),
		SMTPPassword:         os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:             os.Getenv("SMTP_FROM"),
		SlackWebhookURL:      os.Getenv("SLACK_WEBHOOK_URL"),
		ArchiveDatabaseURL:   os.Getenv("ARCHIVE_DATABASE_URL"),
		ArchiveBatchSize:     100,
		ArchiveFlushInterval: 5 * time.Second,
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	var err error
	if cfg.HistorySize, err = intEnv("EVENT_HISTORY_SIZE", cfg.HistorySize); err != nil {
		return Config{}, err
	}
	if cfg.WorkerPoolSize, err = intEnv("NOTIFICATION_WORKERS", cfg.WorkerPoolSize); err != nil {
		return Config{}, err
	}
	if cfg.SendTimeout, err = durationEnv("NOTIFICATION_SEND_TIMEOUT", cfg.SendTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WebhookBackoffBase, err = durationEnv("WEBHOOK_BACKOFF_BASE", cfg.WebhookBackoffBase); err != nil {
		return Config{}, err
	}
	if cfg.ArchiveBatchSize, err = intEnv("ARCHIVE_BATCH_SIZE", cfg.ArchiveBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.ArchiveFlushInterval, err = durationEnv("ARCHIVE_FLUSH_INTERVAL", cfg.ArchiveFlushInterval); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", name, raw)
	}
	return d, nil
}
