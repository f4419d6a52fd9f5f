package monitor

import (
	"fmt"
	"sort"
	"time"

	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/google/uuid"
)

// Options tune the state machine.
type Options struct {
	// Cooldown is the dwell time after an alert clears before the kind
	// can raise again.
	Cooldown time.Duration
	// RenotifyInterval is the number of consecutive breaches between
	// non-suppressed repeat notifications.
	RenotifyInterval int
}

// Machine owns the per-kind alert states and applies the transition
// rules. It holds no locks: the scheduler goroutine is the only caller
// of Advance, and Snapshot returns copies.
type Machine struct {
	thresholds map[metric.Kind]ThresholdConfig
	states     map[metric.Kind]*AlertState
	opts       Options
}

// NewMachine builds a machine for the configured kinds. A kind whose
// low-water mark is not strictly below its high-water mark is a fatal
// configuration error: the machine refuses to start rather than evaluate
// thresholds that can never clear.
func NewMachine(thresholds map[metric.Kind]ThresholdConfig, opts Options) (*Machine, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("no metric kinds configured")
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60 * time.Second
	}
	if opts.RenotifyInterval < 1 {
		opts.RenotifyInterval = 5
	}

	states := make(map[metric.Kind]*AlertState, len(thresholds))
	for kind, cfg := range thresholds {
		if cfg.LowWaterMark >= cfg.HighWaterMark {
			return nil, fmt.Errorf("kind %s: low-water mark %g must be below high-water mark %g",
				kind, cfg.LowWaterMark, cfg.HighWaterMark)
		}
		states[kind] = &AlertState{Kind: kind, Status: StatusOk}
	}

	return &Machine{thresholds: thresholds, states: states, opts: opts}, nil
}

// Threshold returns the read-only threshold config for a kind.
func (m *Machine) Threshold(kind metric.Kind) (ThresholdConfig, bool) {
	cfg, ok := m.thresholds[kind]
	return cfg, ok
}

// IsAlerting reports whether the kind currently has an open alert.
func (m *Machine) IsAlerting(kind metric.Kind) bool {
	st, ok := m.states[kind]
	return ok && st.Status == StatusAlerting
}

// Kinds returns the configured kinds in stable order.
func (m *Machine) Kinds() []metric.Kind {
	kinds := make([]metric.Kind, 0, len(m.states))
	for k := range m.states {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Snapshot returns value copies of every state, in stable order.
func (m *Machine) Snapshot() []AlertState {
	out := make([]AlertState, 0, len(m.states))
	for _, kind := range m.Kinds() {
		out = append(out, *m.states[kind])
	}
	return out
}

// Advance applies one evaluated tick for a kind and returns the
// resulting transition, or nil when nothing observable happened.
//
// Status only ever moves ok -> alerting -> cooldown -> ok. The cooldown
// dwell swallows every severity until it elapses; on the first tick at
// or after expiry the state drops back to ok silently and the same
// reading is then evaluated under the ok rules, so a still-breaching
// metric raises a fresh incident immediately once the dwell is over.
func (m *Machine) Advance(kind metric.Kind, sev Severity, reading metric.Reading, now time.Time) *Transition {
	st, ok := m.states[kind]
	if !ok {
		return nil
	}

	if st.Status == StatusCooldown {
		if now.Before(st.CooldownUntil) {
			return nil
		}
		st.Status = StatusOk
		st.LastTransitionAt = now
		st.IncidentID = ""
	}

	switch st.Status {
	case StatusOk:
		if sev != SeverityBreach {
			return nil
		}
		st.Status = StatusAlerting
		st.LastTransitionAt = now
		st.ConsecutiveBreaches = 1
		st.IncidentID = uuid.NewString()
		return &Transition{
			Kind:                kind,
			From:                StatusOk,
			To:                  StatusAlerting,
			Type:                TransitionRaised,
			Reading:             reading,
			Threshold:           m.thresholds[kind].HighWaterMark,
			ConsecutiveBreaches: st.ConsecutiveBreaches,
			IncidentID:          st.IncidentID,
			At:                  now,
		}

	case StatusAlerting:
		switch sev {
		case SeverityBreach:
			st.ConsecutiveBreaches++
			return &Transition{
				Kind:                kind,
				From:                StatusAlerting,
				To:                  StatusAlerting,
				Type:                TransitionRepeated,
				Reading:             reading,
				Threshold:           m.thresholds[kind].HighWaterMark,
				ConsecutiveBreaches: st.ConsecutiveBreaches,
				Suppressed:          st.ConsecutiveBreaches%m.opts.RenotifyInterval != 0,
				IncidentID:          st.IncidentID,
				At:                  now,
			}
		case SeverityNormal:
			breaches := st.ConsecutiveBreaches
			incident := st.IncidentID
			st.Status = StatusCooldown
			st.LastTransitionAt = now
			st.CooldownUntil = now.Add(m.opts.Cooldown)
			st.ConsecutiveBreaches = 0
			return &Transition{
				Kind:                kind,
				From:                StatusAlerting,
				To:                  StatusCooldown,
				Type:                TransitionCleared,
				Reading:             reading,
				Threshold:           m.thresholds[kind].HighWaterMark,
				ConsecutiveBreaches: breaches,
				IncidentID:          incident,
				At:                  now,
			}
		default:
			// inside the hysteresis band: the alert stays open, quiet
			return nil
		}
	}
	return nil
}
