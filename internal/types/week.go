// Package types implements special types for the hearthledger backend.
package types

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Week is a 7-day accounting period, identified by its first day.
// The time of day is always 00:00 UTC.
type Week time.Time

// NewWeek returns the Week starting on the given day.
func NewWeek(year int, month time.Month, day int) Week {
	return Week(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// WeekOf returns the Week containing t for a week that starts on startDay.
func WeekOf(t time.Time, startDay time.Weekday) Week {
	t = t.In(time.UTC)

	// time.Weekday counts Sunday as 0, shift so that the
	// configured start day maps to offset 0
	offset := (int(t.Weekday()) - int(startDay) + 7) % 7

	year, month, day := t.AddDate(0, 0, -offset).Date()
	return Week(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// String returns the first day of the week formatted as YYYY-MM-DD.
func (w Week) String() string {
	return time.Time(w).Format("2006-01-02")
}

// ParseWeek parses a "YYYY-MM-DD" string and returns the Week value
// starting on that day.
func ParseWeek(s string) (Week, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Week{}, err
	}

	return Week(t), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (w Week) MarshalJSON() ([]byte, error) {
	return time.Time(w).MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Both RFC3339 timestamps and plain "2006-01-02" dates are accepted,
// everything below day precision is ignored.
func (w *Week) UnmarshalJSON(data []byte) error {
	value := string(data)
	if value == `""` || value == "null" {
		return nil
	}

	if len(value) >= 2 {
		value = value[1 : len(value)-1] // get rid of "
	}

	pattern := "2006-01-02T15:04:05Z07:00"
	if len(value) == len("2006-01-02") {
		pattern = "2006-01-02"
	}

	t, err := time.Parse(pattern, value)
	if err != nil {
		return err
	}

	year, month, day := t.In(time.UTC).Date()
	*w = NewWeek(year, month, day)
	return nil
}

// Scan reads the value from the database.
func (w *Week) Scan(value interface{}) (err error) {
	nullTime := &sql.NullTime{}
	err = nullTime.Scan(value)
	*w = Week(nullTime.Time.In(time.UTC))
	return err
}

// Value returns the value for the SQL driver to write to the database.
func (w Week) Value() (driver.Value, error) {
	year, month, day := time.Time(w).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Week) GormDataType() string {
	return "date"
}

// IsZero reports if the week is the zero value.
func (w Week) IsZero() bool {
	return time.Time(w).IsZero()
}

// Start returns the first instant of the week.
func (w Week) Start() time.Time {
	return time.Time(w)
}

// End returns the first instant after the week. The interval is
// half-open: [Start, End).
func (w Week) End() time.Time {
	return time.Time(w).AddDate(0, 0, 7)
}

// Next returns the week immediately following w.
func (w Week) Next() Week {
	return Week(w.End())
}

// Add returns the week n weeks after w. Negative values move backwards.
func (w Week) Add(n int) Week {
	return Week(time.Time(w).AddDate(0, 0, 7*n))
}

// Before reports whether the week instant w is before v.
func (w Week) Before(v Week) bool {
	return time.Time(w).Before(time.Time(v))
}

// After reports whether the week instant w is after v.
func (w Week) After(v Week) bool {
	return time.Time(w).After(time.Time(v))
}

// Equal reports whether w and v represent the same week.
func (w Week) Equal(v Week) bool {
	return time.Time(w).Equal(time.Time(v))
}

// Contains reports whether the time instant is in the week.
func (w Week) Contains(t time.Time) bool {
	t = t.In(time.UTC)
	return !t.Before(w.Start()) && t.Before(w.End())
}

// WeeksBetween returns how many whole weeks lie between w and v.
// The result is negative when v is before w.
func WeeksBetween(w, v Week) int {
	return int(time.Time(v).Sub(time.Time(w)) / (7 * 24 * time.Hour))
}

var _ fmt.Stringer = Week{}
