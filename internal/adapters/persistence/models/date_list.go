package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeList is a chronologically ordered list of timestamps stored as a JSON
// array column. ReturnDates and ExtendDates use it; both are append-only
// until the borrowing is returned and must round-trip losslessly.
type TimeList []time.Time

// Value implements driver.Valuer
func (l TimeList) Value() (driver.Value, error) {
	if l == nil {
		l = TimeList{}
	}
	b, err := json.Marshal([]time.Time(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *TimeList) Scan(value interface{}) error {
	if value == nil {
		*l = TimeList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeList", value)
	}

	var ts []time.Time
	if err := json.Unmarshal(raw, &ts); err != nil {
		return err
	}
	*l = TimeList(ts)
	return nil
}

// Last returns the final element, the currently active due date for a
// ReturnDates column. ok is false when the list is empty.
func (l TimeList) Last() (t time.Time, ok bool) {
	if len(l) == 0 {
		return time.Time{}, false
	}
	return l[len(l)-1], true
}

// Times returns the list as a plain slice copy.
func (l TimeList) Times() []time.Time {
	out := make([]time.Time, len(l))
	copy(out, l)
	return out
}

// StringList is a list of strings stored as a JSON array column
// (return-condition image references).
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	var ss []string
	if err := json.Unmarshal(raw, &ss); err != nil {
		return err
	}
	*l = StringList(ss)
	return nil
}
