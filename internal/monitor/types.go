package monitor

import (
	"context"
	"time"

	"github.com/Ericlein/Eribot/internal/metric"
)

// Status is the alert lifecycle state of one metric kind.
type Status string

const (
	StatusOk       Status = "ok"
	StatusAlerting Status = "alerting"
	StatusCooldown Status = "cooldown"
)

// TransitionType names the observable state machine events.
type TransitionType string

const (
	TransitionRaised   TransitionType = "raised"
	TransitionCleared  TransitionType = "cleared"
	TransitionRepeated TransitionType = "repeated"
)

// ThresholdConfig bounds one metric kind. Loaded once at startup and
// read-only for the lifetime of the loop.
type ThresholdConfig struct {
	Kind          metric.Kind `json:"kind"`
	HighWaterMark float64     `json:"high_water_mark"`
	LowWaterMark  float64     `json:"low_water_mark"`
}

// AlertState tracks one metric kind. It is owned exclusively by the
// scheduler goroutine and mutated only through Machine.Advance.
type AlertState struct {
	Kind                metric.Kind `json:"kind"`
	Status              Status      `json:"status"`
	LastTransitionAt    time.Time   `json:"last_transition_at"`
	ConsecutiveBreaches int         `json:"consecutive_breaches"`
	CooldownUntil       time.Time   `json:"cooldown_until"`
	IncidentID          string      `json:"incident_id,omitempty"`
}

// Transition is the ephemeral event produced by one evaluation tick.
// Downstream dispatchers consume it immediately; it is never stored
// beyond the optional journal record.
type Transition struct {
	Kind                metric.Kind    `json:"kind"`
	From                Status         `json:"from"`
	To                  Status         `json:"to"`
	Type                TransitionType `json:"type"`
	Reading             metric.Reading `json:"reading"`
	Threshold           float64        `json:"threshold"`
	ConsecutiveBreaches int            `json:"consecutive_breaches"`
	Suppressed          bool           `json:"suppressed"`
	IncidentID          string         `json:"incident_id"`
	At                  time.Time      `json:"at"`
}

// RemediationOutcome is the result of dispatching remediation for a
// raised transition, synthetic on transport exhaustion.
type RemediationOutcome struct {
	Success           bool          `json:"success"`
	Message           string        `json:"message"`
	DetailSteps       []string      `json:"detail_steps,omitempty"`
	ExecutionDuration time.Duration `json:"execution_duration"`
}

// Remediator turns a raised transition into a remediation attempt.
// Implementations never propagate a failure as an error; exhaustion is
// reported through the outcome so the loop always continues.
type Remediator interface {
	Dispatch(ctx context.Context, tr Transition) RemediationOutcome
}

// Notifier delivers transition notifications. A nil error means the
// message was delivered or intentionally suppressed.
type Notifier interface {
	NotifyTransition(ctx context.Context, tr Transition, outcome *RemediationOutcome) error
}

// Journal persists transitions and remediation outcomes. Writes are
// best-effort; failures are logged and never stall the loop.
type Journal interface {
	RecordTransition(ctx context.Context, tr Transition) error
	RecordOutcome(ctx context.Context, tr Transition, outcome RemediationOutcome) error
}

// StatusSink receives a state snapshot after each completed tick.
type StatusSink interface {
	Publish(s StatusSnapshot)
}

// Stats are cumulative loop counters since process start.
type Stats struct {
	Checks                uint64 `json:"checks"`
	AcquisitionFailures   uint64 `json:"acquisition_failures"`
	Raised                uint64 `json:"raised"`
	Cleared               uint64 `json:"cleared"`
	Renotified            uint64 `json:"renotified"`
	RemediationsSucceeded uint64 `json:"remediations_succeeded"`
	RemediationsFailed    uint64 `json:"remediations_failed"`
	Notifications         uint64 `json:"notifications"`
	SkippedTicks          uint64 `json:"skipped_ticks"`
}

// StatusSnapshot is the externally visible view published after each tick.
type StatusSnapshot struct {
	States           []AlertState  `json:"states"`
	Stats            Stats         `json:"stats"`
	LastTickAt       time.Time     `json:"last_tick_at"`
	LastTickDuration time.Duration `json:"last_tick_duration"`
}
