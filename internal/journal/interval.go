package journal

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// durationToPgInterval splits a duration into whole days plus
// microseconds, matching how PostgreSQL represents intervals.
func durationToPgInterval(d time.Duration) pgtype.Interval {
	days := int32(d / (24 * time.Hour))
	remainder := d % (24 * time.Hour)
	return pgtype.Interval{
		Microseconds: remainder.Microseconds(),
		Days:         days,
		Valid:        true,
	}
}

// pgIntervalToDuration converts a PostgreSQL interval back to a
// duration, approximating months as 30 days.
func pgIntervalToDuration(interval pgtype.Interval) (time.Duration, error) {
	if !interval.Valid {
		return 0, fmt.Errorf("interval is not valid")
	}

	d := time.Duration(interval.Microseconds) * time.Microsecond
	d += time.Duration(interval.Days) * 24 * time.Hour
	d += time.Duration(interval.Months) * 30 * 24 * time.Hour
	return d, nil
}
