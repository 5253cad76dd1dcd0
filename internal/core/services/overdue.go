package services

import (
	"sort"
	"time"
)

// CalculateOverdueDays computes cumulative late days for a borrowing.
//
// Semantics are a compatibility contract with the legacy system and must not
// be "improved":
//
//  1. With no due dates, the whole borrow-to-return span counts.
//  2. Otherwise both date lists are sorted ascending and the dues are walked
//     as windows (cursor, dueDate], cursor starting at borrowDate. A window
//     holding an extension grant contributes the days from the window start
//     to the grant; a window without one contributes nothing. The cursor
//     then advances to the window's due date.
//  3. Days from the final due date to the actual return date are added.
//
// A grant inside a window therefore counts the pre-grant days as late even
// when the grant predates the deadline.
func CalculateOverdueDays(borrowDate time.Time, returnDates, extendDates []time.Time, actualReturnDate time.Time) int {
	if len(returnDates) == 0 {
		return daysBetween(borrowDate, actualReturnDate)
	}

	dues := sortedCopy(returnDates)
	grants := sortedCopy(extendDates)

	overdue := 0
	cursor := borrowDate
	for _, due := range dues {
		if grant, ok := firstGrantInWindow(grants, cursor, due); ok {
			overdue += max0(daysBetween(cursor, grant))
		}
		cursor = due
	}

	overdue += max0(daysBetween(cursor, actualReturnDate))
	return overdue
}

// firstGrantInWindow finds the earliest grant g with after < g <= until.
func firstGrantInWindow(grants []time.Time, after, until time.Time) (time.Time, bool) {
	for _, g := range grants {
		if g.After(after) && !g.After(until) {
			return g, true
		}
	}
	return time.Time{}, false
}

func sortedCopy(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// daysBetween truncates the span to whole days.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
