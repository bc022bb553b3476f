// Package schedule describes when a task runs.
//
// A Descriptor is one of four shapes: daily at a fixed time, weekly on a
// weekday, monthly on a day of the month, or a fixed interval in seconds.
// The JSON form keeps the flat keys used by the registry file:
//
//	{"hour": 9, "minute": 0}
//	{"weekday": 1, "hour": 7, "minute": 30}
//	{"day": 15, "hour": 8, "minute": 0}
//	{"interval": 3600}
package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidSchedule is returned when schedule fields are out of range or
// combined in a way that does not describe exactly one schedule shape.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Kind identifies the active case of a Descriptor.
type Kind string

const (
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
	KindInterval Kind = "interval"
)

// Descriptor is a tagged schedule value. Exactly one of the calendar
// fields (Hour and Minute, optionally Weekday or Day) or Interval is set.
type Descriptor struct {
	Hour     *int `json:"hour,omitempty"`
	Minute   *int `json:"minute,omitempty"`
	Weekday  *int `json:"weekday,omitempty"`
	Day      *int `json:"day,omitempty"`
	Interval *int `json:"interval,omitempty"`
}

// Daily returns a schedule that fires every day at hour:minute.
func Daily(hour, minute int) (Descriptor, error) {
	d := Descriptor{Hour: intPtr(hour), Minute: intPtr(minute)}
	return d, d.Validate()
}

// Weekly returns a schedule that fires on weekday (0 = Sunday) at hour:minute.
func Weekly(weekday, hour, minute int) (Descriptor, error) {
	d := Descriptor{Weekday: intPtr(weekday), Hour: intPtr(hour), Minute: intPtr(minute)}
	return d, d.Validate()
}

// Monthly returns a schedule that fires on day of the month at hour:minute.
func Monthly(day, hour, minute int) (Descriptor, error) {
	d := Descriptor{Day: intPtr(day), Hour: intPtr(hour), Minute: intPtr(minute)}
	return d, d.Validate()
}

// Every returns a schedule that fires every seconds seconds.
func Every(seconds int) (Descriptor, error) {
	d := Descriptor{Interval: intPtr(seconds)}
	return d, d.Validate()
}

// Validate checks field ranges and that exactly one schedule shape is set.
func (d Descriptor) Validate() error {
	if d.Interval != nil {
		if d.Hour != nil || d.Minute != nil || d.Weekday != nil || d.Day != nil {
			return invalid("interval cannot be combined with hour, minute, weekday or day")
		}
		if *d.Interval <= 0 {
			return invalid("interval must be greater than 0 seconds (got %d)", *d.Interval)
		}
		return nil
	}

	if d.Hour == nil && d.Minute == nil && d.Weekday == nil && d.Day == nil {
		return invalid("no schedule given: use hour and minute, weekday, day or interval")
	}
	if d.Hour == nil || d.Minute == nil {
		return invalid("hour and minute must be given together")
	}
	if d.Weekday != nil && d.Day != nil {
		return invalid("weekday and day of month cannot be combined")
	}
	if *d.Hour < 0 || *d.Hour > 23 {
		return invalid("hour must be between 0 and 23 (got %d)", *d.Hour)
	}
	if *d.Minute < 0 || *d.Minute > 59 {
		return invalid("minute must be between 0 and 59 (got %d)", *d.Minute)
	}
	if d.Weekday != nil && (*d.Weekday < 0 || *d.Weekday > 6) {
		return invalid("weekday must be between 0 (Sunday) and 6 (Saturday) (got %d)", *d.Weekday)
	}
	if d.Day != nil && (*d.Day < 1 || *d.Day > 31) {
		return invalid("day must be between 1 and 31 (got %d)", *d.Day)
	}
	return nil
}

// Kind reports the active case. The result is only meaningful for a
// descriptor that passed Validate.
func (d Descriptor) Kind() Kind {
	switch {
	case d.Interval != nil:
		return KindInterval
	case d.Weekday != nil:
		return KindWeekly
	case d.Day != nil:
		return KindMonthly
	default:
		return KindDaily
	}
}

// IsZero reports whether no field is set.
func (d Descriptor) IsZero() bool {
	return d.Hour == nil && d.Minute == nil && d.Weekday == nil && d.Day == nil && d.Interval == nil
}

// Equal compares two descriptors field by field.
func (d Descriptor) Equal(o Descriptor) bool {
	return eqPtr(d.Hour, o.Hour) && eqPtr(d.Minute, o.Minute) &&
		eqPtr(d.Weekday, o.Weekday) && eqPtr(d.Day, o.Day) && eqPtr(d.Interval, o.Interval)
}

// Calendar renders the launchd StartCalendarInterval keys. It returns nil
// for interval schedules.
func (d Descriptor) Calendar() map[string]int {
	if d.Interval != nil {
		return nil
	}
	cal := make(map[string]int, 3)
	if d.Hour != nil {
		cal["Hour"] = *d.Hour
	}
	if d.Minute != nil {
		cal["Minute"] = *d.Minute
	}
	if d.Weekday != nil {
		cal["Weekday"] = *d.Weekday
	}
	if d.Day != nil {
		cal["Day"] = *d.Day
	}
	return cal
}

// IntervalSeconds renders the launchd StartInterval value.
func (d Descriptor) IntervalSeconds() (int, bool) {
	if d.Interval == nil {
		return 0, false
	}
	return *d.Interval, true
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchedule, fmt.Sprintf(format, args...))
}

func intPtr(v int) *int {
	return &v
}

func eqPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
