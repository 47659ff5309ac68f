package reading

import (
	"errors"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckTimelineMonotonic(t *testing.T) {
	existing := []Sample{
		{EntryID: 1, Date: day(1), Page: 50, Percent: 16},
		{EntryID: 2, Date: day(5), Page: 120, Percent: 40},
		{EntryID: 3, Date: day(10), Page: 200, Percent: 66},
	}

	cases := []struct {
		name      string
		date      time.Time
		value     int64
		unit      Unit
		direction string
	}{
		{"append after all", day(12), 250, UnitPage, ""},
		{"equal to latest", day(12), 200, UnitPage, ""},
		{"insert between", day(7), 150, UnitPage, ""},
		{"insert between too low", day(7), 100, UnitPage, "before"},
		{"insert between too high", day(7), 230, UnitPage, "after"},
		{"early date over later entries", day(2), 130, UnitPage, "after"},
		{"percent unit", day(7), 50, UnitPercent, ""},
		{"percent too low", day(7), 30, UnitPercent, "before"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTimeline(existing, tc.date, tc.value, tc.unit, 0)
			if tc.direction == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var conflict *TimelineConflict
			if !errors.As(err, &conflict) {
				t.Fatalf("expected TimelineConflict, got %v", err)
			}
			if conflict.Direction != tc.direction {
				t.Fatalf("expected direction %q, got %q", tc.direction, conflict.Direction)
			}
		})
	}
}

func TestCheckTimelineSameDayUnconstrained(t *testing.T) {
	existing := []Sample{
		{EntryID: 1, Date: day(5), Page: 120},
	}

	// A second entry on the same calendar date may be lower or higher.
	if err := CheckTimeline(existing, day(5), 10, UnitPage, 0); err != nil {
		t.Fatalf("same-day lower value should pass: %v", err)
	}
	if err := CheckTimeline(existing, day(5).Add(14*time.Hour), 300, UnitPage, 0); err != nil {
		t.Fatalf("same-day higher value should pass: %v", err)
	}
}

func TestCheckTimelineExcludesOwnEntry(t *testing.T) {
	existing := []Sample{
		{EntryID: 1, Date: day(1), Page: 50},
		{EntryID: 2, Date: day(5), Page: 120},
	}

	// Editing entry 2 down to 40 conflicts with entry 1, not with itself.
	err := CheckTimeline(existing, day(5), 40, UnitPage, 2)
	var conflict *TimelineConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected TimelineConflict, got %v", err)
	}
	if conflict.Value != 50 || conflict.Direction != "before" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	// Editing entry 2 up is unconstrained once its own row is excluded.
	if err := CheckTimeline(existing, day(5), 500, UnitPage, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckTimelineConflictMessage(t *testing.T) {
	existing := []Sample{{EntryID: 1, Date: day(9), Page: 200}}

	err := CheckTimeline(existing, day(3), 40, UnitPage, 0)
	if err == nil {
		t.Fatal("expected conflict")
	}
	if got, want := err.Error(), "progress must be at most 200 (page logged on 2026-03-09)"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
