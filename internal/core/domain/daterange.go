package domain

import (
	"fmt"
	"time"
)

// DateRange is an inclusive time span at second granularity.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate reports whether the range is well-formed (start <= end).
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("invalid date range: start %s is after end %s",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

// Halve returns the range bisected at its midpoint, truncated to whole
// seconds. The returned range keeps the original start; the caller narrows
// by replacing its end. Once the span is under two seconds the midpoint
// collapses onto the start, which the partitioner detects as the
// resolution floor.
func (r DateRange) Halve() DateRange {
	half := (r.End.Sub(r.Start) / 2).Truncate(time.Second)
	return DateRange{Start: r.Start, End: r.Start.Add(half)}
}

// Seconds returns the span length in whole seconds.
func (r DateRange) Seconds() int64 {
	return int64(r.End.Sub(r.Start) / time.Second)
}
