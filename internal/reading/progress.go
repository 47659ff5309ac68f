// Package reading holds the pure domain rules for reading sessions and
// progress entries: the status workflow, percentage and delta arithmetic,
// and the timeline monotonicity check. Nothing here touches the database.
package reading

import "time"

// PercentForPage converts a page position into a completion percentage.
// Truncating division: 300 of 350 is 85, never 86. An unknown page count
// yields 0.
func PercentForPage(page, totalPages int64) int64 {
	if totalPages <= 0 {
		return 0
	}
	return page * 100 / totalPages
}

// PageForPercent converts a percentage into a page position, truncating.
func PageForPercent(percent, totalPages int64) int64 {
	if totalPages <= 0 {
		return 0
	}
	return totalPages * percent / 100
}

// PagesRead is the delta between an entry and its chronological predecessor,
// floored at zero.
func PagesRead(currentPage, previousPage int64) int64 {
	if currentPage <= previousPage {
		return 0
	}
	return currentPage - previousPage
}

// DateOnly strips the time-of-day component. Progress dates are calendar
// dates; normalising them at the boundary makes same-day comparison exact.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
