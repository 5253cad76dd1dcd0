package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var d0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func days(n int) time.Time {
	return d0.AddDate(0, 0, n)
}

func TestCalculateOverdueDays_NoDueDates(t *testing.T) {
	got := CalculateOverdueDays(d0, nil, nil, days(10))
	assert.Equal(t, 10, got)
}

func TestCalculateOverdueDays_NoDueDatesSameDay(t *testing.T) {
	got := CalculateOverdueDays(d0, nil, nil, d0)
	assert.Equal(t, 0, got)
}

func TestCalculateOverdueDays_SimpleLateReturn(t *testing.T) {
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, nil, days(20))
	assert.Equal(t, 6, got)
}

func TestCalculateOverdueDays_OnTimeReturn(t *testing.T) {
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, nil, days(14))
	assert.Equal(t, 0, got)
}

func TestCalculateOverdueDays_EarlyReturn(t *testing.T) {
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, nil, days(7))
	assert.Equal(t, 0, got)
}

func TestCalculateOverdueDays_GrantInsideWindow(t *testing.T) {
	// Grant at day 5 inside (d0, d0+14]: first segment counts 5 days,
	// trailing segment counts 20-14 = 6 days.
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, []time.Time{days(5)}, days(20))
	assert.Equal(t, 11, got)
}

func TestCalculateOverdueDays_GrantOutsideWindow(t *testing.T) {
	// Grant after the only due date: no window holds it, so only the
	// trailing segment counts.
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, []time.Time{days(16)}, days(20))
	assert.Equal(t, 6, got)
}

func TestCalculateOverdueDays_TwoWindows(t *testing.T) {
	// First renewal granted late (day 16, inside (d0+14, d0+28]): the
	// second window counts 16-14 = 2 days, then 30-28 = 2 trailing days.
	dues := []time.Time{days(14), days(28)}
	grants := []time.Time{days(16)}
	got := CalculateOverdueDays(d0, dues, grants, days(30))
	assert.Equal(t, 4, got)
}

func TestCalculateOverdueDays_TwoWindowsOnTime(t *testing.T) {
	// Renewal granted before the first deadline still counts the pre-grant
	// days; returned before the extended deadline adds nothing.
	dues := []time.Time{days(14), days(28)}
	grants := []time.Time{days(10)}
	got := CalculateOverdueDays(d0, dues, grants, days(25))
	assert.Equal(t, 10, got)
}

func TestCalculateOverdueDays_UnsortedInputs(t *testing.T) {
	// Lists arrive in storage order; the calculator sorts before walking.
	dues := []time.Time{days(28), days(14)}
	grants := []time.Time{days(16)}
	got := CalculateOverdueDays(d0, dues, grants, days(30))
	assert.Equal(t, 4, got)
}

func TestCalculateOverdueDays_PartialDayTruncates(t *testing.T) {
	actual := days(20).Add(23 * time.Hour)
	got := CalculateOverdueDays(d0, []time.Time{days(14)}, nil, actual)
	assert.Equal(t, 6, got)
}
