package activity

import (
	"fmt"
	"time"
)

// ResolveWindow returns the aggregation window ending at now.
// An explicit start is used as-is; otherwise the window starts at midnight of the previous business day.
func ResolveWindow(now time.Time, explicitStart *time.Time) (TimeWindow, error) {
	if explicitStart != nil {
		if explicitStart.After(now) {
			return TimeWindow{}, fmt.Errorf("%w: %s > %s", ErrInvalidWindow,
				explicitStart.Format(time.RFC3339), now.Format(time.RFC3339))
		}
		return TimeWindow{Start: *explicitStart, End: now}, nil
	}

	return TimeWindow{Start: PreviousBusinessDay(now), End: now}, nil
}

// PreviousBusinessDay returns 00:00 of the business day before now.
// Saturday, Sunday and Monday all go back to Friday.
func PreviousBusinessDay(now time.Time) time.Time {
	daysBack := 1
	switch now.Weekday() {
	case time.Monday:
		daysBack = 3
	case time.Sunday:
		daysBack = 2
	}

	y, m, d := now.Date()
	return time.Date(y, m, d-daysBack, 0, 0, 0, 0, now.Location())
}

// FormatRange renders a window as "Monday, Jan 13 2025 00:00 - Monday, Jan 13 2025 12:00"
func FormatRange(w TimeWindow) string {
	const layout = "Monday, Jan 02 2006 15:04"
	return w.Start.Format(layout) + " - " + w.End.Format(layout)
}
