package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate rejects configurations the monitor must not start with.
// Threshold bounds are checked here once; the control loop treats the
// resulting values as read-only for its whole lifetime.
func (c *Config) Validate() error {
	thresholds := map[string]float64{
		"cpu_threshold":    c.Monitoring.CPUThreshold,
		"memory_threshold": c.Monitoring.MemoryThreshold,
		"disk_threshold":   c.Monitoring.DiskThreshold,
	}
	for name, v := range thresholds {
		if v < 1 || v > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %g", name, v)
		}
	}

	margin := c.Monitoring.HysteresisMargin
	if margin < 1 || margin > 99 {
		return fmt.Errorf("hysteresis_margin must be between 1 and 99, got %g", margin)
	}
	for name, v := range thresholds {
		if v-margin < 0 {
			return fmt.Errorf("hysteresis_margin %g leaves %s with a negative low-water mark", margin, name)
		}
	}

	interval := c.Monitoring.CheckIntervalDuration()
	if interval < 5*time.Second || interval > 3600*time.Second {
		return fmt.Errorf("check_interval must be between 5s and 3600s, got %s", interval)
	}
	if c.Monitoring.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must not be negative, got %d", c.Monitoring.CooldownSeconds)
	}
	if c.Monitoring.RenotifyInterval < 1 {
		return fmt.Errorf("renotify_interval must be at least 1, got %d", c.Monitoring.RenotifyInterval)
	}

	switch c.Metrics.Source {
	case "system", "prometheus":
	default:
		return fmt.Errorf("metrics source must be \"system\" or \"prometheus\", got %q", c.Metrics.Source)
	}
	if c.Metrics.Source == "prometheus" && !isHTTPURL(c.Metrics.PrometheusURL) {
		return fmt.Errorf("prometheus_url must be an http(s) URL, got %q", c.Metrics.PrometheusURL)
	}

	if !isHTTPURL(c.Remediator.URL) {
		return fmt.Errorf("remediator url must be an http(s) URL, got %q", c.Remediator.URL)
	}
	switch c.Remediator.Mode {
	case "live", "simulated":
	default:
		return fmt.Errorf("remediator mode must be \"live\" or \"simulated\", got %q", c.Remediator.Mode)
	}
	if c.Remediator.TimeoutDuration() <= 0 {
		return fmt.Errorf("remediator timeout must be positive, got %q", c.Remediator.Timeout)
	}
	if c.Remediator.RetryAttempts < 0 || c.Remediator.RetryAttempts > 10 {
		return fmt.Errorf("remediator retry_attempts must be between 0 and 10, got %d", c.Remediator.RetryAttempts)
	}
	for issueType, p := range c.Remediator.Priorities {
		if p < 1 || p > 10 {
			return fmt.Errorf("remediator priority for %q must be between 1 and 10, got %d", issueType, p)
		}
	}

	if c.Slack.Token != "" && !strings.HasPrefix(c.Slack.Token, "xoxb-") {
		return fmt.Errorf("slack token must start with \"xoxb-\"")
	}
	if c.Slack.Token != "" && !strings.HasPrefix(c.Slack.Channel, "#") {
		return fmt.Errorf("slack channel must start with \"#\", got %q", c.Slack.Channel)
	}
	if c.Notifications.WebhookURL != "" && !isHTTPURL(c.Notifications.WebhookURL) {
		return fmt.Errorf("notification webhook_url must be an http(s) URL, got %q", c.Notifications.WebhookURL)
	}
	if c.Notifications.DedupeWindowSeconds < 0 {
		return fmt.Errorf("dedupe_window_seconds must not be negative, got %d", c.Notifications.DedupeWindowSeconds)
	}
	if c.Notifications.RatePerMinute < 1 {
		return fmt.Errorf("rate_per_minute must be at least 1, got %d", c.Notifications.RatePerMinute)
	}

	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
