package metric

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	promModel "github.com/prometheus/common/model"
	"github.com/rs/zerolog/log"
)

// Default node_exporter expressions; each must reduce to a single
// instant vector sample in [0,100].
var defaultQueries = map[Kind]string{
	KindCPU:    `100 - (avg(rate(node_cpu_seconds_total{mode="idle"}[5m])) * 100)`,
	KindMemory: `(1 - (node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)) * 100`,
	KindDisk:   `(1 - (node_filesystem_avail_bytes{mountpoint="/"} / node_filesystem_size_bytes{mountpoint="/"})) * 100`,
}

// PromSource samples a remote host through a Prometheus server instead of
// reading the local machine.
type PromSource struct {
	api      v1.API
	queries  map[Kind]string
	hostname string
	timeout  time.Duration
}

// NewPromSource builds a source backed by the Prometheus query API.
// Entries in overrides replace the default expression for that kind.
func NewPromSource(address string, overrides map[string]string, timeout time.Duration) (*PromSource, error) {
	client, err := api.NewClient(api.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}

	queries := make(map[Kind]string, len(defaultQueries))
	for k, q := range defaultQueries {
		queries[k] = q
	}
	for k, q := range overrides {
		if q != "" {
			queries[Kind(k)] = q
		}
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PromSource{
		api:      v1.NewAPI(client),
		queries:  queries,
		hostname: localHostname(),
		timeout:  timeout,
	}, nil
}

func (s *PromSource) Sample(ctx context.Context, kind Kind) (Reading, error) {
	query, ok := s.queries[kind]
	if !ok {
		return Reading{}, fmt.Errorf("prometheus source has no query for kind %q", kind)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, warnings, err := s.api.Query(cctx, query, time.Now())
	if err != nil {
		return Reading{}, fmt.Errorf("query prometheus: %w", err)
	}
	if len(warnings) > 0 {
		log.Warn().Strs("warnings", warnings).Str("query", query).Msg("prometheus query returned warnings")
	}

	vector, ok := result.(promModel.Vector)
	if !ok {
		return Reading{}, fmt.Errorf("unexpected prometheus result type: %T", result)
	}
	if len(vector) == 0 {
		return Reading{}, fmt.Errorf("prometheus query %q returned no samples", query)
	}

	sample := vector[0]
	hostname := s.hostname
	if inst := string(sample.Metric["instance"]); inst != "" {
		hostname = inst
	}

	return Reading{
		Kind:       kind,
		Value:      float64(sample.Value),
		Hostname:   hostname,
		ObservedAt: sample.Timestamp.Time(),
	}, nil
}
