package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ericlein/Eribot/internal/metric"
)

// Prober reports a monitored service's health as a failure score: 0
// when the endpoint answers 2xx, 100 otherwise. Feeding the score
// through the same threshold machinery as resource metrics gives
// service outages the full alert lifecycle: raise, re-notify, cooldown.
type Prober struct {
	url      string
	hostname string
	client   *http.Client
}

// NewProber probes endpoint (typically a /health route) with the given
// per-request timeout.
func NewProber(endpoint string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{
		url:      endpoint,
		hostname: probeTarget(endpoint),
		client:   &http.Client{Timeout: timeout},
	}
}

// Sample implements metric.Source for the service health kind. An
// unreachable endpoint is a definitive unhealthy observation, not an
// acquisition failure, so the reading carries the failure score instead
// of an error.
func (p *Prober) Sample(ctx context.Context, kind metric.Kind) (metric.Reading, error) {
	if kind != metric.KindServiceHealth {
		return metric.Reading{}, fmt.Errorf("health prober cannot sample kind %q", kind)
	}

	reading := metric.Reading{
		Kind:       kind,
		Hostname:   p.hostname,
		ObservedAt: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return metric.Reading{}, fmt.Errorf("build health probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", p.url).Msg("health probe did not connect")
		reading.Value = 100
		return reading, nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		reading.Value = 0
	} else {
		log.Debug().Int("status", resp.StatusCode).Str("url", p.url).Msg("health probe unhealthy")
		reading.Value = 100
	}
	return reading, nil
}

func probeTarget(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return "unknown"
}
