package remediation

import (
	"fmt"
	"sort"

	"github.com/Ericlein/Eribot/internal/metric"
)

// Issue describes the remediation registered for one metric kind.
type Issue struct {
	Type     string
	Priority int
}

func defaultIssues() map[metric.Kind]Issue {
	return map[metric.Kind]Issue{
		metric.KindCPU:           {Type: IssueHighCPU, Priority: 7},
		metric.KindMemory:        {Type: IssueHighMemory, Priority: 8},
		metric.KindDisk:          {Type: IssueHighDisk, Priority: 6},
		metric.KindServiceHealth: {Type: IssueServiceHealth, Priority: 9},
	}
}

// Registry maps metric kinds to the issue type and priority sent to the
// remediation service. It is built once at startup and read-only after,
// so a misconfigured priority fails the process instead of silently
// no-opping at dispatch time.
type Registry struct {
	byKind map[metric.Kind]Issue
}

// NewRegistry builds the kind-to-issue mapping, applying per-issue-type
// priority overrides from configuration.
func NewRegistry(priorities map[string]int) (*Registry, error) {
	byKind := defaultIssues()

	byType := make(map[string]metric.Kind, len(byKind))
	for kind, issue := range byKind {
		byType[issue.Type] = kind
	}

	for issueType, priority := range priorities {
		kind, ok := byType[issueType]
		if !ok {
			return nil, fmt.Errorf("priority override for unknown issue type %q (known: %v)", issueType, knownTypes(byKind))
		}
		if priority < 1 || priority > 10 {
			return nil, fmt.Errorf("priority for %q must be between 1 and 10, got %d", issueType, priority)
		}
		issue := byKind[kind]
		issue.Priority = priority
		byKind[kind] = issue
	}

	return &Registry{byKind: byKind}, nil
}

// Lookup returns the issue registered for kind.
func (r *Registry) Lookup(kind metric.Kind) (Issue, bool) {
	issue, ok := r.byKind[kind]
	return issue, ok
}

// Validate checks that every monitored kind has a registered issue.
// Called at startup so a kind can never reach dispatch unmapped.
func (r *Registry) Validate(kinds []metric.Kind) error {
	for _, kind := range kinds {
		if _, ok := r.byKind[kind]; !ok {
			return fmt.Errorf("no remediation issue registered for metric kind %q", kind)
		}
	}
	return nil
}

func knownTypes(byKind map[metric.Kind]Issue) []string {
	types := make([]string, 0, len(byKind))
	for _, issue := range byKind {
		types = append(types, issue.Type)
	}
	sort.Strings(types)
	return types
}
