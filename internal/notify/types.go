package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Ericlein/Eribot/internal/metric"
	"github.com/Ericlein/Eribot/internal/monitor"
)

// Severity ranks a notification for routing and formatting.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Poster delivers one formatted message to a destination.
type Poster interface {
	Post(ctx context.Context, sev Severity, text string) error
	Name() string
}

// severityFor maps a transition and its remediation outcome, when one
// is attached, to a notification severity. Re-notifications that pass
// the cadence filter escalate to critical because the breach has been
// standing for several checks.
func severityFor(tr monitor.Transition, outcome *monitor.RemediationOutcome) Severity {
	switch tr.Type {
	case monitor.TransitionCleared:
		return SeverityInfo
	case monitor.TransitionRepeated:
		return SeverityCritical
	default:
		if outcome != nil && !outcome.Success {
			return SeverityError
		}
		if tr.Kind == metric.KindServiceHealth {
			return SeverityError
		}
		return SeverityWarning
	}
}

// LogPoster writes notifications to the service log. It is the fallback
// destination when neither Slack credentials nor a webhook URL are
// configured.
type LogPoster struct{}

func (LogPoster) Name() string { return "log" }

func (LogPoster) Post(_ context.Context, sev Severity, text string) error {
	var evt *zerolog.Event
	switch sev {
	case SeverityInfo:
		evt = log.Info()
	case SeverityWarning:
		evt = log.Warn()
	default:
		evt = log.Error()
	}
	evt.Str("severity", string(sev)).Msg(text)
	return nil
}
