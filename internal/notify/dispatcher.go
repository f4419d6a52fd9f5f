package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/Ericlein/Eribot/internal/monitor"
)

// Options tune the notification pipeline.
type Options struct {
	// DedupeWindow collapses identical (kind, event) notifications.
	DedupeWindow time.Duration
	// RatePerMinute is the sustained outbound message rate; Burst allows
	// short spikes, e.g. several kinds raising on the same tick.
	RatePerMinute int
	Burst         int
}

// Dispatcher fans alert transitions out to the configured poster with
// cadence filtering, dedupe, rate limiting and secret masking applied.
// Delivery gets one retry; after that the notification is dropped and
// logged, so a dead Slack endpoint never stalls the monitoring loop.
type Dispatcher struct {
	poster  Poster
	dedupe  DedupeStore
	limiter *rate.Limiter
	window  time.Duration
}

func NewDispatcher(poster Poster, dedupe DedupeStore, opts Options) *Dispatcher {
	if opts.DedupeWindow <= 0 {
		opts.DedupeWindow = time.Minute
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	return &Dispatcher{
		poster:  poster,
		dedupe:  dedupe,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), opts.Burst),
		window:  opts.DedupeWindow,
	}
}

// NotifyTransition implements monitor.Notifier.
func (d *Dispatcher) NotifyTransition(ctx context.Context, tr monitor.Transition, outcome *monitor.RemediationOutcome) error {
	sev := severityFor(tr, outcome)

	if tr.Suppressed {
		log.Debug().
			Str("kind", string(tr.Kind)).
			Int("consecutive_breaches", tr.ConsecutiveBreaches).
			Msg("re-notification suppressed by cadence")
		notificationsTotal.WithLabelValues(string(sev), "suppressed").Inc()
		return nil
	}

	key := fmt.Sprintf("%s:%s", tr.Kind, tr.Type)
	seen, err := d.dedupe.Seen(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dedupe lookup failed, sending anyway")
	} else if seen {
		log.Debug().Str("key", key).Msg("notification deduplicated")
		notificationsTotal.WithLabelValues(string(sev), "deduped").Inc()
		return nil
	}

	return d.deliver(ctx, sev, key, formatTransition(tr, outcome))
}

// PostSystem sends a lifecycle notice such as startup or shutdown. It
// bypasses dedupe but still observes masking and the rate limiter.
func (d *Dispatcher) PostSystem(ctx context.Context, sev Severity, text string) error {
	return d.deliver(ctx, sev, "", text)
}

func (d *Dispatcher) deliver(ctx context.Context, sev Severity, dedupeKey, text string) error {
	if !d.limiter.Allow() {
		log.Warn().Str("severity", string(sev)).Msg("notification dropped by rate limiter")
		notificationsTotal.WithLabelValues(string(sev), "ratelimited").Inc()
		return nil
	}

	text = MaskSecrets(text)

	err := d.poster.Post(ctx, sev, text)
	if err != nil {
		log.Warn().Err(err).Str("poster", d.poster.Name()).Msg("notification delivery failed, retrying once")
		err = d.poster.Post(ctx, sev, text)
	}
	if err != nil {
		notificationsTotal.WithLabelValues(string(sev), "failed").Inc()
		return fmt.Errorf("deliver notification: %w", err)
	}

	if dedupeKey != "" {
		if err := d.dedupe.Mark(ctx, dedupeKey, d.window); err != nil {
			log.Warn().Err(err).Str("key", dedupeKey).Msg("failed to mark dedupe key")
		}
	}
	notificationsTotal.WithLabelValues(string(sev), "sent").Inc()
	return nil
}

func formatTransition(tr monitor.Transition, outcome *monitor.RemediationOutcome) string {
	var text string
	switch tr.Type {
	case monitor.TransitionCleared:
		text = fmt.Sprintf("%s recovered on %s: %.1f%% (incident %s closed after %d breached checks)",
			kindLabel(tr.Kind), tr.Reading.Hostname, tr.Reading.Value, tr.IncidentID, tr.ConsecutiveBreaches)
	case monitor.TransitionRepeated:
		text = fmt.Sprintf("%s still breaching on %s: %.1f%% (threshold %.1f%%, %d consecutive checks, incident %s)",
			kindLabel(tr.Kind), tr.Reading.Hostname, tr.Reading.Value, tr.Threshold, tr.ConsecutiveBreaches, tr.IncidentID)
	default:
		text = fmt.Sprintf("%s breached on %s: %.1f%% (threshold %.1f%%, incident %s)",
			kindLabel(tr.Kind), tr.Reading.Hostname, tr.Reading.Value, tr.Threshold, tr.IncidentID)
	}

	if outcome != nil {
		if outcome.Success {
			text += fmt.Sprintf("; remediation succeeded: %s", outcome.Message)
		} else {
			text += fmt.Sprintf("; remediation failed: %s", outcome.Message)
		}
	}
	return text
}

func kindLabel(kind metric.Kind) string {
	switch kind {
	case metric.KindCPU:
		return "CPU usage"
	case metric.KindMemory:
		return "memory usage"
	case metric.KindDisk:
		return "disk usage"
	case metric.KindServiceHealth:
		return "service health"
	default:
		return string(kind)
	}
}
