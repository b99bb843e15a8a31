package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Statement composition.
	SiteConfigPath  string
	TemplateDir     string
	BroadcastExpiry time.Duration
	DedupeCacheSize int

	// Issuance log.
	IssuanceLogPath       string
	IssuanceAuditSchedule string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	expiry, err := time.ParseDuration(sharedcfg.EnvOrDefault("BROADCAST_EXPIRY", "60m"))
	if err != nil || expiry <= 0 {
		return nil, errors.New("invalid BROADCAST_EXPIRY")
	}

	dedupeSize, err := parseDedupeCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-tsunami-bulletins"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "tsunami-broadcast-scripts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "tsunami-statement-service"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SiteConfigPath:  sharedcfg.EnvOrDefault("SITE_CONFIG_PATH", "config/site.yaml"),
		TemplateDir:     os.Getenv("TEMPLATE_DIR"),
		BroadcastExpiry: expiry,
		DedupeCacheSize: dedupeSize,

		IssuanceLogPath:       sharedcfg.EnvOrDefault("ISSUANCE_LOG_PATH", "data/last_issued.txt"),
		IssuanceAuditSchedule: sharedcfg.EnvOrDefault("ISSUANCE_AUDIT_SCHEDULE", "@every 5m"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.SiteConfigPath == "" {
		return nil, errors.New("SITE_CONFIG_PATH is required")
	}
	if cfg.IssuanceLogPath == "" {
		return nil, errors.New("ISSUANCE_LOG_PATH is required")
	}
	if _, err := cron.ParseStandard(cfg.IssuanceAuditSchedule); err != nil {
		return nil, errors.New("invalid ISSUANCE_AUDIT_SCHEDULE")
	}

	return cfg, nil
}

func parseDedupeCacheSize() (int, error) {
	s := os.Getenv("DEDUPE_CACHE_SIZE")
	if s == "" {
		return 256, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid DEDUPE_CACHE_SIZE")
	}
	return n, nil
}
