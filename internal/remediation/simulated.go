package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// SimulatedExecutor acts out remediations locally without touching the
// host. Used in the "simulated" remediator mode for demos and tests of
// the full control loop.
type SimulatedExecutor struct {
	delay time.Duration
}

// NewSimulatedExecutor returns an executor that pretends each
// remediation takes a moment to complete.
func NewSimulatedExecutor() *SimulatedExecutor {
	return &SimulatedExecutor{delay: 200 * time.Millisecond}
}

func (e *SimulatedExecutor) Name() string { return "simulated" }

// Execute waits briefly, then reports success with plausible steps.
func (e *SimulatedExecutor) Execute(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(e.delay):
	}

	log.Info().
		Str("issue_type", req.IssueType).
		Int("priority", req.Priority).
		Msg("simulated remediation executed")

	return &Response{
		Success:         true,
		Message:         fmt.Sprintf("simulated remediation for %s completed", req.IssueType),
		Details:         simulatedSteps(req.IssueType),
		ExecutionTimeMs: float64(time.Since(started).Milliseconds()),
	}, nil
}

func simulatedSteps(issueType string) []string {
	switch issueType {
	case IssueHighCPU:
		return []string{
			"collected per-process cpu usage",
			"identified top 3 cpu consumers",
			"no runaway process found, deferred to operator",
		}
	case IssueHighMemory:
		return []string{
			"collected per-process memory usage",
			"dropped filesystem caches",
			"memory pressure relieved",
		}
	case IssueHighDisk:
		return []string{
			"scanned temp directories",
			"removed rotated logs older than 7 days",
			"disk usage reduced",
		}
	case IssueServiceHealth:
		return []string{
			"probed service endpoint",
			"restarted unhealthy service unit",
			"service responding again",
		}
	default:
		return []string{"no playbook for issue type, logged for operator review"}
	}
}
