package clock

import "time"

// Clock provides the current time. The borrowing workflow takes it as a
// dependency so due-date rebasing and overdue math are testable.
type Clock interface {
	Now() time.Time
}

// System is the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
