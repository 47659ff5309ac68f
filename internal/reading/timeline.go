package reading

import (
	"fmt"
	"time"
)

// Unit selects which value of a progress entry the timeline check compares.
type Unit string

const (
	UnitPage    Unit = "page"
	UnitPercent Unit = "percent"
)

// Sample is the slice of a progress entry the timeline check needs.
type Sample struct {
	EntryID int64
	Date    time.Time
	Page    int64
	Percent int64
}

func (s Sample) value(unit Unit) int64 {
	if unit == UnitPercent {
		return s.Percent
	}
	return s.Page
}

// TimelineConflict reports a monotonicity violation against a specific
// existing entry. Direction is "before" when an earlier entry already has a
// higher value, "after" when a later entry has a lower one.
type TimelineConflict struct {
	Direction string
	Date      time.Time
	Value     int64
	Unit      Unit
}

func (e *TimelineConflict) Error() string {
	unit := "page"
	if e.Unit == UnitPercent {
		unit = "percent"
	}
	if e.Direction == "before" {
		return fmt.Sprintf("progress must be at least %d (%s logged on %s)", e.Value, unit, e.Date.Format("2006-01-02"))
	}
	return fmt.Sprintf("progress must be at most %d (%s logged on %s)", e.Value, unit, e.Date.Format("2006-01-02"))
}

// CheckTimeline verifies that a candidate value keeps the session's progress
// monotonic in time. Existing entries are partitioned around the candidate
// date; the candidate must be >= every earlier value and <= every later one.
// Entries on the exact candidate date do not constrain each other, and
// excludeEntryID skips the entry's own row when editing.
func CheckTimeline(existing []Sample, candidateDate time.Time, candidateValue int64, unit Unit, excludeEntryID int64) error {
	candidateDate = DateOnly(candidateDate)

	var before, after *Sample
	for i := range existing {
		s := existing[i]
		if excludeEntryID != 0 && s.EntryID == excludeEntryID {
			continue
		}
		date := DateOnly(s.Date)
		switch {
		case date.Before(candidateDate):
			if before == nil || s.value(unit) > before.value(unit) {
				before = &existing[i]
			}
		case date.After(candidateDate):
			if after == nil || s.value(unit) < after.value(unit) {
				after = &existing[i]
			}
		}
	}

	if before != nil && candidateValue < before.value(unit) {
		return &TimelineConflict{
			Direction: "before",
			Date:      DateOnly(before.Date),
			Value:     before.value(unit),
			Unit:      unit,
		}
	}
	if after != nil && candidateValue > after.value(unit) {
		return &TimelineConflict{
			Direction: "after",
			Date:      DateOnly(after.Date),
			Value:     after.value(unit),
			Unit:      unit,
		}
	}
	return nil
}
