package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// String renders the schedule for humans, e.g. "daily at 09:00",
// "Mon at 07:30", "day 15 at 08:00" or "every 2 hour(s)".
func (d Descriptor) String() string {
	if d.Interval != nil {
		return formatInterval(*d.Interval)
	}
	if d.IsZero() {
		return "unscheduled"
	}

	var parts []string
	if d.Weekday != nil && *d.Weekday >= 0 && *d.Weekday < len(weekdayNames) {
		parts = append(parts, weekdayNames[*d.Weekday])
	}
	if d.Day != nil {
		parts = append(parts, fmt.Sprintf("day %d", *d.Day))
	}

	hour := "*"
	if d.Hour != nil {
		hour = fmt.Sprintf("%02d", *d.Hour)
	}
	minute := "00"
	if d.Minute != nil {
		minute = fmt.Sprintf("%02d", *d.Minute)
	}
	at := hour + ":" + minute

	if len(parts) == 0 {
		return "daily at " + at
	}
	return strings.Join(parts, ", ") + " at " + at
}

func formatInterval(seconds int) string {
	switch {
	case seconds >= 86400:
		return fmt.Sprintf("every %d day(s)", seconds/86400)
	case seconds >= 3600:
		return fmt.Sprintf("every %d hour(s)", seconds/3600)
	case seconds >= 60:
		return fmt.Sprintf("every %d minute(s)", seconds/60)
	default:
		return fmt.Sprintf("every %d second(s)", seconds)
	}
}

// CronSpec renders the schedule as a standard 5-field cron expression,
// or an "@every" descriptor for intervals.
func (d Descriptor) CronSpec() (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if d.Interval != nil {
		return fmt.Sprintf("@every %ds", *d.Interval), nil
	}
	dom, dow := "*", "*"
	if d.Day != nil {
		dom = fmt.Sprintf("%d", *d.Day)
	}
	if d.Weekday != nil {
		dow = fmt.Sprintf("%d", *d.Weekday)
	}
	return fmt.Sprintf("%d %d %s * %s", *d.Minute, *d.Hour, dom, dow), nil
}

// Next returns the first activation strictly after from. Interval
// schedules are anchored at from, since launchd counts intervals from
// job load time.
func (d Descriptor) Next(from time.Time) (time.Time, error) {
	spec, err := d.CronSpec()
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return sched.Next(from), nil
}
