package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Ericlein/Eribot/internal/monitor"
)

// Store is the PostgreSQL-backed journal. The schema is created on
// startup so a fresh database works without a migration step.
type Store struct {
	db *Database
}

func NewStore(ctx context.Context, db *Database) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS incident_transitions (
		id TEXT PRIMARY KEY,
		incident_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		event TEXT NOT NULL,
		from_status TEXT NOT NULL,
		to_status TEXT NOT NULL,
		metric_value DOUBLE PRECISION NOT NULL,
		threshold DOUBLE PRECISION NOT NULL,
		consecutive_breaches INTEGER NOT NULL,
		suppressed BOOLEAN NOT NULL,
		hostname TEXT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_incident_transitions_incident ON incident_transitions(incident_id);
	CREATE INDEX IF NOT EXISTS idx_incident_transitions_created ON incident_transitions(created_at);

	CREATE TABLE IF NOT EXISTS remediation_outcomes (
		id TEXT PRIMARY KEY,
		incident_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		message TEXT NOT NULL,
		detail_steps TEXT[],
		execution_time INTERVAL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_remediation_outcomes_incident ON remediation_outcomes(incident_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// RecordTransition implements monitor.Journal.
func (s *Store) RecordTransition(ctx context.Context, tr monitor.Transition) error {
	const q = `
	INSERT INTO incident_transitions(
		id, incident_id, kind, event, from_status, to_status,
		metric_value, threshold, consecutive_breaches, suppressed, hostname, observed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, q,
		uuid.NewString(), tr.IncidentID, string(tr.Kind), string(tr.Type),
		string(tr.From), string(tr.To), tr.Reading.Value, tr.Threshold,
		tr.ConsecutiveBreaches, tr.Suppressed, tr.Reading.Hostname, tr.Reading.ObservedAt)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// RecordOutcome implements monitor.Journal.
func (s *Store) RecordOutcome(ctx context.Context, tr monitor.Transition, outcome monitor.RemediationOutcome) error {
	const q = `
	INSERT INTO remediation_outcomes(
		id, incident_id, kind, success, message, detail_steps, execution_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, q,
		uuid.NewString(), tr.IncidentID, string(tr.Kind), outcome.Success,
		outcome.Message, pq.Array(outcome.DetailSteps),
		durationToPgInterval(outcome.ExecutionDuration))
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// TransitionRecord is one persisted transition row.
type TransitionRecord struct {
	ID                  string    `json:"id"`
	IncidentID          string    `json:"incident_id"`
	Kind                string    `json:"kind"`
	Event               string    `json:"event"`
	From                string    `json:"from"`
	To                  string    `json:"to"`
	MetricValue         float64   `json:"metric_value"`
	Threshold           float64   `json:"threshold"`
	ConsecutiveBreaches int       `json:"consecutive_breaches"`
	Suppressed          bool      `json:"suppressed"`
	Hostname            string    `json:"hostname"`
	ObservedAt          time.Time `json:"observed_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// OutcomeRecord is one persisted remediation outcome row.
type OutcomeRecord struct {
	ID            string        `json:"id"`
	IncidentID    string        `json:"incident_id"`
	Kind          string        `json:"kind"`
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	DetailSteps   []string      `json:"detail_steps,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	CreatedAt     time.Time     `json:"created_at"`
}

// RecentTransitions returns up to limit transitions, newest first.
func (s *Store) RecentTransitions(ctx context.Context, limit int) ([]TransitionRecord, error) {
	const q = `
	SELECT id, incident_id, kind, event, from_status, to_status,
	       metric_value, threshold, consecutive_breaches, suppressed, hostname, observed_at, created_at
	FROM incident_transitions
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var res []TransitionRecord
	for rows.Next() {
		var r TransitionRecord
		if err := rows.Scan(&r.ID, &r.IncidentID, &r.Kind, &r.Event, &r.From, &r.To,
			&r.MetricValue, &r.Threshold, &r.ConsecutiveBreaches, &r.Suppressed,
			&r.Hostname, &r.ObservedAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// RecentOutcomes returns up to limit remediation outcomes, newest first.
func (s *Store) RecentOutcomes(ctx context.Context, limit int) ([]OutcomeRecord, error) {
	const q = `
	SELECT id, incident_id, kind, success, message, detail_steps, execution_time, created_at
	FROM remediation_outcomes
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var res []OutcomeRecord
	for rows.Next() {
		var r OutcomeRecord
		var steps pq.StringArray
		var interval pgtype.Interval
		if err := rows.Scan(&r.ID, &r.IncidentID, &r.Kind, &r.Success, &r.Message,
			&steps, &interval, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		r.DetailSteps = steps
		d, err := pgIntervalToDuration(interval)
		if err != nil {
			log.Warn().Err(err).Str("outcome_id", r.ID).Msg("unreadable execution interval")
		} else {
			r.ExecutionTime = d
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
