package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday is ordered Monday first, matching how the hours are edited.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayCodes = [...]string{"", "MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

var dayAliases = map[string]Weekday{
	"MONDAY": Monday, "TUESDAY": Tuesday, "WEDNESDAY": Wednesday, "THURSDAY": Thursday,
	"FRIDAY": Friday, "SATURDAY": Saturday, "SUNDAY": Sunday,
	// legacy editorial codes
	"TUES": Tuesday, "THUR": Thursday, "THURS": Thursday,
}

func ParseWeekday(s string) (Weekday, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for d := Monday; d <= Sunday; d++ {
		if dayCodes[d] == u {
			return d, nil
		}
	}
	if d, ok := dayAliases[u]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// WeekdayOf maps a time.Weekday (Sunday = 0) onto the Monday-first enum.
func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return dayCodes[d]
}

func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return []byte(dayCodes[d]), nil
}

func (d *Weekday) UnmarshalText(b []byte) error {
	v, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// TimeOfDay is a naive wall-clock time in seconds since midnight.
type TimeOfDay int

func NewTimeOfDay(h, m, s int) TimeOfDay { return TimeOfDay(h*3600 + m*60 + s) }

// ClockOf drops the date, zone and sub-second part of t and keeps its wall clock.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return NewTimeOfDay(h, m, s)
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return 0, &FormatError{Field: "time", Code: "invalid_time", Value: s}
}

func (t TimeOfDay) Clock() (h, m, s int) {
	v := int(t)
	return v / 3600, v % 3600 / 60, v % 60
}

func (t TimeOfDay) String() string {
	h, m, _ := t.Clock()
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	h, m, s := t.Clock()
	if s != 0 {
		return []byte(fmt.Sprintf("%02d:%02d:%02d", h, m, s)), nil
	}
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// OperatingHours is one weekday's window for a location.
type OperatingHours struct {
	Day       Weekday    `json:"day"`
	Opening   *TimeOfDay `json:"opening_time,omitempty"`
	Closing   *TimeOfDay `json:"closing_time,omitempty"`
	Closed    bool       `json:"closed"`
	SortOrder int        `json:"sort_order"`
}

// Format renders "DAY: open - close tz"; tz is the display label only.
func (h OperatingHours) Format(tz string) string {
	return fmt.Sprintf("%s: %s - %s %s", h.Day, clockOrDash(h.Opening), clockOrDash(h.Closing), tz)
}

func clockOrDash(t *TimeOfDay) string {
	if t == nil {
		return "--"
	}
	return t.String()
}

// Contains reports whether at falls inside the window, both ends inclusive.
// Overnight windows (closing before opening) never contain anything.
func (h OperatingHours) Contains(at TimeOfDay) bool {
	if h.Closed || h.Opening == nil || h.Closing == nil {
		return false
	}
	return *h.Opening <= at && at <= *h.Closing
}

// Schedule is a location's hours in editorial order.
type Schedule []OperatingHours

// Entry returns the first entry for day.
func (s Schedule) Entry(day Weekday) (OperatingHours, bool) {
	for _, h := range s {
		if h.Day == day {
			return h, true
		}
	}
	return OperatingHours{}, false
}

func (s Schedule) Validate() error {
	seen := make(map[Weekday]bool, len(s))
	for _, h := range s {
		if !h.Day.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidDay, int(h.Day))
		}
		if seen[h.Day] {
			return fmt.Errorf("%w: %s", ErrDuplicateDay, h.Day)
		}
		seen[h.Day] = true
	}
	return nil
}

// Sorted returns a copy ordered by SortOrder; equal orders keep their input position.
func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// Format renders every entry in editorial order.
func (s Schedule) Format(tz string) []string {
	out := make([]string, 0, len(s))
	for _, h := range s {
		out = append(out, h.Format(tz))
	}
	return out
}

// IsOpen reports whether the schedule is open at now's wall-clock time.
// A closed entry for the day wins over any window; otherwise the first
// entry whose window contains the time makes the location open.
func IsOpen(s Schedule, now time.Time) bool {
	day, at := WeekdayOf(now.Weekday()), ClockOf(now)
	// any fraction past the closing second is already after closing
	frac := now.Nanosecond() > 0
	open := false
	for _, h := range s {
		if h.Day != day {
			continue
		}
		if h.Closed {
			return false
		}
		if !open && h.Contains(at) && !(frac && *h.Closing == at) {
			open = true
		}
	}
	return open
}

func IsOpenNow(s Schedule) bool { return IsOpen(s, time.Now()) }
