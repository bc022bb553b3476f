package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/nexsched/internal/schedule"
)

var weekdayNames = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// scheduleFlags binds the schedule flags shared by create and edit.
type scheduleFlags struct {
	hour     int
	minute   int
	weekday  string
	day      int
	interval int
	daily    bool
}

func (s *scheduleFlags) register(cmd *cobra.Command, withDaily bool) {
	f := cmd.Flags()
	f.IntVar(&s.hour, "hour", 0, "hour of day (0-23)")
	f.IntVar(&s.minute, "minute", 0, "minute (0-59)")
	f.StringVar(&s.weekday, "weekday", "", "day of week: 0-7 (0 and 7 are Sunday) or a name such as mon")
	f.IntVar(&s.day, "day", 0, "day of month (1-31)")
	f.IntVar(&s.interval, "interval", 0, "run every N seconds instead of at a calendar time")
	if withDaily {
		f.BoolVar(&s.daily, "daily", false, "drop weekday and day so the task runs every day")
	}
}

// fields returns only the flags given on the command line.
func (s *scheduleFlags) fields(cmd *cobra.Command) (schedule.Fields, error) {
	var out schedule.Fields
	f := cmd.Flags()

	if f.Changed("hour") {
		out.Hour = intPtr(s.hour)
	}
	if f.Changed("minute") {
		out.Minute = intPtr(s.minute)
	}
	if f.Changed("weekday") {
		wd, err := parseWeekday(s.weekday)
		if err != nil {
			return schedule.Fields{}, err
		}
		out.Weekday = intPtr(wd)
	}
	if f.Changed("day") {
		out.Day = intPtr(s.day)
	}
	if f.Changed("interval") {
		out.Interval = intPtr(s.interval)
	}
	out.Daily = s.daily
	return out, nil
}

// parseWeekday accepts 0-7 (cron style, 7 is Sunday) or an English day name.
func parseWeekday(value string) (int, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		if n == 7 {
			return 0, nil
		}
		return n, nil
	}
	if n, ok := weekdayNames[value]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", schedule.ErrInvalidSchedule, value)
}

func intPtr(v int) *int {
	return &v
}
