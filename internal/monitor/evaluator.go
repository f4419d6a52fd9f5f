package monitor

// Severity classifies a single reading against its thresholds.
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityBreach  Severity = "breach"
)

// Evaluate maps a metric value to a severity. Pure; no side effects.
//
// A value at or above the high-water mark is a breach. Below it, the band
// [low, high) is sticky: while the kind is alerting, recovery requires the
// value to drop to the low-water mark or below, so a reading hovering at
// the boundary cannot flap the alert. Both comparisons are inclusive.
func Evaluate(value float64, cfg ThresholdConfig, alerting bool) Severity {
	if value >= cfg.HighWaterMark {
		return SeverityBreach
	}
	if alerting {
		if value <= cfg.LowWaterMark {
			return SeverityNormal
		}
		return SeverityWarning
	}
	if value >= cfg.LowWaterMark {
		return SeverityWarning
	}
	return SeverityNormal
}
