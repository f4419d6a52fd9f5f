package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Remediator    RemediatorConfig    `yaml:"remediator"`
	Slack         SlackConfig         `yaml:"slack"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
}

type ServerConfig struct {
	BindAddr string `yaml:"bindAddr"`
	APIToken string `yaml:"api_token"` // empty disables API authentication
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"maxSizeMB"`
	BackupCount int    `yaml:"backupCount"`
	Console     bool   `yaml:"console"`
}

type MonitoringConfig struct {
	CPUThreshold     float64 `yaml:"cpu_threshold"`
	MemoryThreshold  float64 `yaml:"memory_threshold"`
	DiskThreshold    float64 `yaml:"disk_threshold"`
	HysteresisMargin float64 `yaml:"hysteresis_margin"`
	CheckInterval    string  `yaml:"check_interval"` // e.g. "60s"
	CooldownSeconds  int     `yaml:"cooldown_seconds"`
	RenotifyInterval int     `yaml:"renotify_interval"`
	DiskPath         string  `yaml:"disk_path"`
}

type MetricsConfig struct {
	Source        string            `yaml:"source"` // "system" or "prometheus"
	PrometheusURL string            `yaml:"prometheus_url"`
	QueryTimeout  string            `yaml:"query_timeout"`
	Queries       map[string]string `yaml:"queries"` // optional per-kind PromQL overrides
}

type RemediatorConfig struct {
	URL                 string         `yaml:"url"`
	Mode                string         `yaml:"mode"` // "live" or "simulated"
	Timeout             string         `yaml:"timeout"`
	RetryAttempts       int            `yaml:"retry_attempts"`
	HealthCheckInterval string         `yaml:"health_check_interval"`
	Priorities          map[string]int `yaml:"priorities"` // optional per-issue-type overrides
}

type SlackConfig struct {
	Token     string `yaml:"token"`
	Channel   string `yaml:"channel"`
	Username  string `yaml:"username"`
	IconEmoji string `yaml:"icon_emoji"`
	APIURL    string `yaml:"api_url"`
}

type NotificationsConfig struct {
	DedupeWindowSeconds int    `yaml:"dedupe_window_seconds"`
	RatePerMinute       int    `yaml:"rate_per_minute"`
	RateBurst           int    `yaml:"rate_burst"`
	WebhookURL          string `yaml:"webhook_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()
	return LoadFrom(*configFile)
}

// LoadFrom builds the configuration from defaults, an optional YAML file
// and environment overrides, in that order of precedence (env wins).
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddr: "0.0.0.0:8080",
		},
		Logging: LoggingConfig{
			Level:       "info",
			File:        "",
			MaxSizeMB:   10,
			BackupCount: 5,
			Console:     true,
		},
		Monitoring: MonitoringConfig{
			CPUThreshold:     90,
			MemoryThreshold:  90,
			DiskThreshold:    90,
			HysteresisMargin: 10,
			CheckInterval:    "60s",
			CooldownSeconds:  0, // 0 means: one check interval
			RenotifyInterval: 5,
			DiskPath:         "/",
		},
		Metrics: MetricsConfig{
			Source:        "system",
			PrometheusURL: "http://localhost:9090",
			QueryTimeout:  "30s",
		},
		Remediator: RemediatorConfig{
			URL:                 "http://localhost:5001",
			Mode:                "live",
			Timeout:             "30s",
			RetryAttempts:       3,
			HealthCheckInterval: "120s",
		},
		Slack: SlackConfig{
			Channel:   "#devops-alerts",
			Username:  "EriBot",
			IconEmoji: ":robot_face:",
			APIURL:    "https://slack.com/api",
		},
		Notifications: NotificationsConfig{
			DedupeWindowSeconds: 60,
			RatePerMinute:       20,
			RateBurst:           5,
		},
		Database: DatabaseConfig{
			Port:    5432,
			User:    "eribot",
			DBName:  "eribot",
			SSLMode: "disable",
		},
		Redis: RedisConfig{},
	}
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.BindAddr = getEnv("SERVER_BIND_ADDR", cfg.Server.BindAddr)
	cfg.Server.APIToken = getEnv("API_AUTH_TOKEN", cfg.Server.APIToken)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnv("LOG_FILE", cfg.Logging.File)

	cfg.Monitoring.CPUThreshold = getEnvFloat("CPU_THRESHOLD", cfg.Monitoring.CPUThreshold)
	cfg.Monitoring.MemoryThreshold = getEnvFloat("MEMORY_THRESHOLD", cfg.Monitoring.MemoryThreshold)
	cfg.Monitoring.DiskThreshold = getEnvFloat("DISK_THRESHOLD", cfg.Monitoring.DiskThreshold)
	cfg.Monitoring.HysteresisMargin = getEnvFloat("HYSTERESIS_MARGIN", cfg.Monitoring.HysteresisMargin)
	cfg.Monitoring.CheckInterval = getEnv("CHECK_INTERVAL", cfg.Monitoring.CheckInterval)
	cfg.Monitoring.CooldownSeconds = getEnvInt("COOLDOWN_SECONDS", cfg.Monitoring.CooldownSeconds)
	cfg.Monitoring.RenotifyInterval = getEnvInt("RENOTIFY_INTERVAL", cfg.Monitoring.RenotifyInterval)
	cfg.Monitoring.DiskPath = getEnv("DISK_PATH", cfg.Monitoring.DiskPath)

	cfg.Metrics.Source = getEnv("METRICS_SOURCE", cfg.Metrics.Source)
	cfg.Metrics.PrometheusURL = getEnv("PROMETHEUS_URL", cfg.Metrics.PrometheusURL)
	cfg.Metrics.QueryTimeout = getEnv("PROMETHEUS_QUERY_TIMEOUT", cfg.Metrics.QueryTimeout)

	cfg.Remediator.URL = getEnv("REMEDIATOR_URL", cfg.Remediator.URL)
	cfg.Remediator.Mode = getEnv("REMEDIATOR_MODE", cfg.Remediator.Mode)
	cfg.Remediator.Timeout = getEnv("REMEDIATOR_TIMEOUT", cfg.Remediator.Timeout)
	cfg.Remediator.RetryAttempts = getEnvInt("REMEDIATOR_RETRY_ATTEMPTS", cfg.Remediator.RetryAttempts)
	cfg.Remediator.HealthCheckInterval = getEnv("REMEDIATOR_HEALTH_INTERVAL", cfg.Remediator.HealthCheckInterval)

	cfg.Slack.Token = getEnv("SLACK_BOT_TOKEN", cfg.Slack.Token)
	cfg.Slack.Channel = getEnv("SLACK_CHANNEL", cfg.Slack.Channel)
	cfg.Slack.Username = getEnv("SLACK_USERNAME", cfg.Slack.Username)
	cfg.Slack.IconEmoji = getEnv("SLACK_ICON_EMOJI", cfg.Slack.IconEmoji)
	cfg.Slack.APIURL = getEnv("SLACK_API_URL", cfg.Slack.APIURL)

	cfg.Notifications.DedupeWindowSeconds = getEnvInt("NOTIFICATION_DEDUPE_WINDOW_SECONDS", cfg.Notifications.DedupeWindowSeconds)
	cfg.Notifications.RatePerMinute = getEnvInt("NOTIFICATION_RATE_PER_MINUTE", cfg.Notifications.RatePerMinute)
	cfg.Notifications.RateBurst = getEnvInt("NOTIFICATION_RATE_BURST", cfg.Notifications.RateBurst)
	cfg.Notifications.WebhookURL = getEnv("NOTIFICATION_WEBHOOK_URL", cfg.Notifications.WebhookURL)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
}

// CheckIntervalDuration returns the parsed check interval.
func (m *MonitoringConfig) CheckIntervalDuration() time.Duration {
	return parseDuration(m.CheckInterval, 60*time.Second)
}

// CooldownDuration returns the cooldown dwell time. A zero setting falls
// back to one check interval, the minimum dwell that prevents an alert
// from re-raising on the very next sample.
func (m *MonitoringConfig) CooldownDuration() time.Duration {
	if m.CooldownSeconds <= 0 {
		return m.CheckIntervalDuration()
	}
	return time.Duration(m.CooldownSeconds) * time.Second
}

func (r *RemediatorConfig) TimeoutDuration() time.Duration {
	return parseDuration(r.Timeout, 30*time.Second)
}

func (r *RemediatorConfig) HealthCheckIntervalDuration() time.Duration {
	return parseDuration(r.HealthCheckInterval, 120*time.Second)
}

func (m *MetricsConfig) QueryTimeoutDuration() time.Duration {
	return parseDuration(m.QueryTimeout, 30*time.Second)
}

func (n *NotificationsConfig) DedupeWindow() time.Duration {
	return time.Duration(n.DedupeWindowSeconds) * time.Second
}

// DSN builds a lib/pq connection string. Empty host means the journal is disabled.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

func parseDuration(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
