package monitor

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/rs/zerolog/log"
)

var errMalformedReading = errors.New("malformed reading: value is negative or NaN")

// Deps carries everything the scheduler needs. Source, Machine and
// Interval are required; the rest are optional and skipped when nil.
type Deps struct {
	Source       metric.Source
	HealthSource metric.Source // probed on HealthInterval under the service health kind
	Machine      *Machine
	Remediator   Remediator
	Notifier     Notifier
	Journal      Journal
	Status       StatusSink

	Kinds          []metric.Kind // resource kinds evaluated every tick
	Interval       time.Duration
	HealthInterval time.Duration
	// TickBudget bounds a whole tick including remediation retries.
	// Default: Interval * 4, the worst case of one attempt plus the
	// default three retries.
	TickBudget time.Duration
}

type scheduler struct {
	deps  Deps
	stats Stats
}

// StartScheduler runs the monitor control loop until ctx is cancelled.
// All evaluation happens on this one goroutine: kinds are checked
// sequentially within a tick, alert state is only touched here, and a
// tick in flight when shutdown arrives completes before return. Ticks
// that would queue behind an overrunning tick are dropped, not replayed.
func StartScheduler(ctx context.Context, deps Deps) {
	if deps.Interval <= 0 {
		deps.Interval = 60 * time.Second
	}
	if deps.HealthInterval <= 0 {
		deps.HealthInterval = 2 * deps.Interval
	}
	if deps.TickBudget <= 0 {
		deps.TickBudget = 4 * deps.Interval
	}
	if len(deps.Kinds) == 0 {
		deps.Kinds = metric.ResourceKinds()
	}

	s := &scheduler{deps: deps}

	t := time.NewTicker(deps.Interval)
	defer t.Stop()
	ht := time.NewTicker(deps.HealthInterval)
	defer ht.Stop()

	log.Info().
		Dur("interval", deps.Interval).
		Dur("health_interval", deps.HealthInterval).
		Msg("monitor scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("monitor scheduler stopped")
			return
		case <-t.C:
			s.runTick(deps.Kinds)
		case <-ht.C:
			if deps.HealthSource != nil {
				s.runTick([]metric.Kind{metric.KindServiceHealth})
			}
		}
	}
}

// runTick evaluates the given kinds once. The tick context is detached
// from the shutdown context on purpose: an in-flight tick finishes its
// own bounded work even while the loop is being asked to stop.
func (s *scheduler) runTick(kinds []metric.Kind) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.TickBudget)
	defer cancel()

	for _, kind := range kinds {
		s.evaluateKind(ctx, kind)
	}

	elapsed := time.Since(started)
	tickDurationSeconds.Set(elapsed.Seconds())
	if elapsed > s.deps.Interval {
		s.stats.SkippedTicks++
		tickSkipsTotal.Inc()
		log.Warn().
			Dur("elapsed", elapsed).
			Dur("interval", s.deps.Interval).
			Msg("tick overran check interval; queued ticks are skipped")
	}

	if s.deps.Status != nil {
		s.deps.Status.Publish(StatusSnapshot{
			States:           s.deps.Machine.Snapshot(),
			Stats:            s.stats,
			LastTickAt:       time.Now(),
			LastTickDuration: elapsed,
		})
	}
}

func (s *scheduler) evaluateKind(ctx context.Context, kind metric.Kind) {
	deps := s.deps
	cfg, ok := deps.Machine.Threshold(kind)
	if !ok {
		return
	}

	src := deps.Source
	if kind == metric.KindServiceHealth && deps.HealthSource != nil {
		src = deps.HealthSource
	}

	s.stats.Checks++
	reading, err := src.Sample(ctx, kind)
	if err == nil && (math.IsNaN(reading.Value) || reading.Value < 0) {
		err = errMalformedReading
	}
	if err != nil {
		// transient acquisition failure: skip this kind without touching
		// its state, so an open incident keeps its breach count
		s.stats.AcquisitionFailures++
		checksTotal.WithLabelValues(string(kind), "error").Inc()
		log.Warn().Err(err).Str("kind", string(kind)).Msg("metric acquisition failed, skipping tick for kind")
		return
	}
	checksTotal.WithLabelValues(string(kind), "ok").Inc()

	sev := Evaluate(reading.Value, cfg, deps.Machine.IsAlerting(kind))
	tr := deps.Machine.Advance(kind, sev, reading, time.Now())
	if tr == nil {
		log.Debug().
			Str("kind", string(kind)).
			Float64("value", reading.Value).
			Str("severity", string(sev)).
			Msg("no transition")
		return
	}

	transitionsTotal.WithLabelValues(string(kind), string(tr.Type)).Inc()
	log.Info().
		Str("kind", string(kind)).
		Str("from", string(tr.From)).
		Str("to", string(tr.To)).
		Str("event", string(tr.Type)).
		Bool("suppressed", tr.Suppressed).
		Float64("value", tr.Reading.Value).
		Int("consecutive_breaches", tr.ConsecutiveBreaches).
		Str("incident_id", tr.IncidentID).
		Msg("alert transition")

	if deps.Journal != nil {
		if err := deps.Journal.RecordTransition(ctx, *tr); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("journal transition write failed")
		}
	}

	var outcome *RemediationOutcome
	switch tr.Type {
	case TransitionRaised:
		s.stats.Raised++
		if deps.Remediator != nil {
			out := deps.Remediator.Dispatch(ctx, *tr)
			outcome = &out
			if out.Success {
				s.stats.RemediationsSucceeded++
			} else {
				s.stats.RemediationsFailed++
			}
			if deps.Journal != nil {
				if err := deps.Journal.RecordOutcome(ctx, *tr, out); err != nil {
					log.Warn().Err(err).Str("kind", string(kind)).Msg("journal outcome write failed")
				}
			}
		}
	case TransitionCleared:
		s.stats.Cleared++
	case TransitionRepeated:
		if !tr.Suppressed {
			s.stats.Renotified++
		}
	}

	if deps.Notifier != nil {
		if err := deps.Notifier.NotifyTransition(ctx, *tr, outcome); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("notification delivery failed")
		} else if !tr.Suppressed {
			s.stats.Notifications++
		}
	}
}
