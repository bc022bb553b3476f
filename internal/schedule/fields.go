package schedule

// Fields holds user supplied schedule fields. A nil pointer means the
// field was not given.
type Fields struct {
	Hour     *int
	Minute   *int
	Weekday  *int
	Day      *int
	Interval *int

	// Daily drops weekday and day from an existing calendar schedule.
	Daily bool
}

// Empty reports whether no schedule field was supplied.
func (f Fields) Empty() bool {
	return f.Hour == nil && f.Minute == nil && f.Weekday == nil && f.Day == nil && f.Interval == nil && !f.Daily
}

// New builds a Descriptor from fields and validates it.
func New(f Fields) (Descriptor, error) {
	d := Descriptor{
		Hour:     copyPtr(f.Hour),
		Minute:   copyPtr(f.Minute),
		Weekday:  copyPtr(f.Weekday),
		Day:      copyPtr(f.Day),
		Interval: copyPtr(f.Interval),
	}
	return d, d.Validate()
}

// Merge applies supplied fields on top of base and validates the result.
//
// An interval replaces the whole schedule. Any calendar field drops an
// existing interval. Weekday and day are alternative cases, so setting one
// clears the other.
func Merge(base Descriptor, f Fields) (Descriptor, error) {
	if f.Empty() {
		return base, base.Validate()
	}
	if f.Interval != nil && f.Hour == nil && f.Minute == nil && f.Weekday == nil && f.Day == nil {
		return New(Fields{Interval: f.Interval})
	}

	out := Descriptor{
		Hour:     copyPtr(base.Hour),
		Minute:   copyPtr(base.Minute),
		Weekday:  copyPtr(base.Weekday),
		Day:      copyPtr(base.Day),
		Interval: copyPtr(base.Interval),
	}
	if f.Interval != nil {
		// mixed interval and calendar input is rejected by Validate
		out.Interval = copyPtr(f.Interval)
	} else {
		out.Interval = nil
	}
	if f.Daily {
		out.Weekday = nil
		out.Day = nil
	}
	if f.Hour != nil {
		out.Hour = copyPtr(f.Hour)
	}
	if f.Minute != nil {
		out.Minute = copyPtr(f.Minute)
	}
	if f.Weekday != nil {
		out.Weekday = copyPtr(f.Weekday)
		if f.Day == nil {
			out.Day = nil
		}
	}
	if f.Day != nil {
		out.Day = copyPtr(f.Day)
		if f.Weekday == nil {
			out.Weekday = nil
		}
	}
	return out, out.Validate()
}

func copyPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
