package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Ericlein/Eribot/internal/monitor"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	initialBackoff = time.Second
)

// Dispatcher turns alert transitions into remediation requests. It
// retries transport failures with exponential backoff and reports every
// exhausted or failed dispatch as an outcome rather than an error, so a
// broken remediation service can never stall the monitoring loop.
type Dispatcher struct {
	exec     Executor
	registry *Registry
	timeout  time.Duration
	retries  int
	sleepFn  func(time.Duration)
}

// NewDispatcher wires an executor to the issue registry. timeout bounds
// each attempt; retries is the number of additional attempts after the
// first.
func NewDispatcher(exec Executor, registry *Registry, timeout time.Duration, retries int) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 0 {
		retries = defaultRetries
	}
	return &Dispatcher{
		exec:     exec,
		registry: registry,
		timeout:  timeout,
		retries:  retries,
		sleepFn:  time.Sleep,
	}
}

// Dispatch submits a remediation for the transition and waits for the
// verdict. Application-level failures (Success=false) are final and not
// retried; only transport failures consume retry attempts.
func (d *Dispatcher) Dispatch(ctx context.Context, tr monitor.Transition) monitor.RemediationOutcome {
	issue, ok := d.registry.Lookup(tr.Kind)
	if !ok {
		// The registry is validated against the monitored kinds at
		// startup, so this indicates a wiring bug.
		log.Error().Str("kind", string(tr.Kind)).Msg("no remediation issue registered for kind")
		return monitor.RemediationOutcome{
			Success: false,
			Message: fmt.Sprintf("no remediation registered for metric kind %s", tr.Kind),
		}
	}

	req := Request{
		IssueType: issue.Type,
		Priority:  issue.Priority,
		Context: map[string]any{
			"hostname":             tr.Reading.Hostname,
			"metric_value":         tr.Reading.Value,
			"threshold":            tr.Threshold,
			"consecutive_breaches": tr.ConsecutiveBreaches,
			"incident_id":          tr.IncidentID,
			"observed_at":          tr.Reading.ObservedAt.UTC().Format(time.RFC3339),
		},
	}

	log.Info().
		Str("issue_type", issue.Type).
		Int("priority", issue.Priority).
		Str("incident_id", tr.IncidentID).
		Str("executor", d.exec.Name()).
		Msg("dispatching remediation")

	started := time.Now()
	defer func() {
		remediationDuration.WithLabelValues(issue.Type).Observe(time.Since(started).Seconds())
	}()

	backoff := initialBackoff
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			wait := backoff
			if wait > d.timeout {
				wait = d.timeout
			}
			log.Warn().
				Str("issue_type", issue.Type).
				Int("attempt", attempt+1).
				Dur("backoff", wait).
				Msg("retrying remediation after transport failure")
			remediationRetriesTotal.Inc()
			d.sleepFn(wait)
			backoff *= 2
			if ctx.Err() != nil {
				break
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
		resp, err := d.exec.Execute(attemptCtx, req)
		cancel()
		if err != nil {
			log.Warn().
				Err(err).
				Str("issue_type", issue.Type).
				Int("attempt", attempt+1).
				Msg("remediation attempt failed")
			continue
		}

		result := "success"
		if !resp.Success {
			result = "failure"
		}
		remediationsTotal.WithLabelValues(issue.Type, result).Inc()

		log.Info().
			Str("issue_type", issue.Type).
			Str("incident_id", tr.IncidentID).
			Bool("success", resp.Success).
			Str("message", resp.Message).
			Msg("remediation completed")

		return monitor.RemediationOutcome{
			Success:           resp.Success,
			Message:           resp.Message,
			DetailSteps:       resp.Details,
			ExecutionDuration: time.Duration(resp.ExecutionTimeMs * float64(time.Millisecond)),
		}
	}

	remediationsTotal.WithLabelValues(issue.Type, "unreachable").Inc()
	log.Error().
		Str("issue_type", issue.Type).
		Str("incident_id", tr.IncidentID).
		Int("attempts", d.retries+1).
		Msg("remediation service unreachable, giving up")

	return monitor.RemediationOutcome{
		Success: false,
		Message: "remediation service unreachable",
	}
}
