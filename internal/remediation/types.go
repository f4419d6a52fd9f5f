package remediation

import (
	"context"
)

// Issue type identifiers understood by the remediation service.
const (
	IssueHighCPU       = "high_cpu"
	IssueHighMemory    = "high_memory"
	IssueHighDisk      = "high_disk"
	IssueServiceHealth = "service_health"
)

// Request is the wire payload for POST /api/remediation/execute.
// Priority runs 1 (lowest) to 10 (highest).
type Request struct {
	IssueType string         `json:"issueType"`
	Context   map[string]any `json:"context"`
	Priority  int            `json:"priority"`
}

// Response is the remediation service's reply.
type Response struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	Details         []string `json:"details"`
	ExecutionTimeMs float64  `json:"executionTimeMs"`
}

// Executor performs a single remediation attempt. A returned error is a
// transport-level failure and may be retried; an application-level
// failure arrives as a Response with Success=false and is final.
// Implementations must honor the context deadline.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
	Name() string
}
