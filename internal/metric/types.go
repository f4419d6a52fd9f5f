package metric

import (
	"context"
	"time"
)

// Kind identifies a monitored metric.
type Kind string

const (
	KindCPU           Kind = "cpu"
	KindMemory        Kind = "memory"
	KindDisk          Kind = "disk"
	KindServiceHealth Kind = "service_health"
)

// ResourceKinds lists the host resource metrics sampled on every tick.
// Service health is probed separately on its own interval.
func ResourceKinds() []Kind {
	return []Kind{KindCPU, KindMemory, KindDisk}
}

// Reading is a single observation of a metric. Values are percentages in
// [0,100]; service health is boolean-coded as 0 (healthy) or 100 (unhealthy).
type Reading struct {
	Kind       Kind      `json:"kind"`
	Value      float64   `json:"value"`
	Hostname   string    `json:"hostname"`
	ObservedAt time.Time `json:"observed_at"`
}

// Source produces readings on demand. Implementations must honor the
// context deadline; a returned error means the sample is unavailable
// this tick, not that the metric is unhealthy.
type Source interface {
	Sample(ctx context.Context, kind Kind) (Reading, error)
}
