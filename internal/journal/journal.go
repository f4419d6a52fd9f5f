// Package journal persists alert transitions and remediation outcomes
// so incidents can be inspected after the fact through the status API.
package journal

import (
	"context"

	"github.com/Ericlein/Eribot/internal/monitor"
)

// Noop discards every record. Used when no database is configured;
// the monitor loop is fully functional without persistence.
type Noop struct{}

func (Noop) RecordTransition(context.Context, monitor.Transition) error {
	return nil
}

func (Noop) RecordOutcome(context.Context, monitor.Transition, monitor.RemediationOutcome) error {
	return nil
}
