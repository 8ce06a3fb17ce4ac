// Package schedule holds the timetable arithmetic shared by validation, occupancy
// and imports: wall-clock times, teaching-week sets and booking overlap.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a wall-clock time expressed in minutes since midnight.
type Clock int

// ParseClock accepts "HH:MM" or "HH:MM:SS" (seconds are ignored) and "9.30"/"9h30" forms
// found in spreadsheets.
func ParseClock(s string) (Clock, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	raw = strings.NewReplacer("h", ":", ".", ":").Replace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) < 1 || len(parts) > 3 || parts[0] == "" {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	m := 0
	if len(parts) > 1 && parts[1] != "" {
		m, err = strconv.Atoi(parts[1])
		if err != nil || m < 0 || m > 59 {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	return Clock(h*60 + m), nil
}

// MustClock is ParseClock for constants; it panics on malformed input.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// SQL formats the clock as HH:MM:SS, the textual form of a Postgres TIME.
func (c Clock) SQL() string {
	return c.String() + ":00"
}

// Hour returns the hour component.
func (c Clock) Hour() int {
	return int(c) / 60
}

// Interval is a half-open [Start, End) span on a given weekday (1 = Monday).
type Interval struct {
	Day   int
	Start Clock
	End   Clock
}

// Valid reports whether the interval is a non-empty span on a real weekday.
func (i Interval) Valid() bool {
	return i.Day >= 1 && i.Day <= 7 && i.Start < i.End
}

// Overlaps reports whether two intervals share any time on the same weekday.
// Touching intervals (10:00-11:00 and 11:00-12:00) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Day == o.Day && i.Start < o.End && o.Start < i.End
}

// Contains reports whether o lies entirely within i.
func (i Interval) Contains(o Interval) bool {
	return i.Day == o.Day && i.Start <= o.Start && o.End <= i.End
}

// Minutes returns the interval length.
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

// Period is the coarse shift used by the institution's timetable.
type Period string

const (
	PeriodMorning   Period = "mati"
	PeriodAfternoon Period = "tarda"
)

// Standard period bounds used when a time slot is created from a shift alone.
var (
	MorningStart   = MustClock("09:00")
	MorningEnd     = MustClock("14:30")
	AfternoonStart = MustClock("15:00")
	AfternoonEnd   = MustClock("19:30")
)

// PeriodBounds returns the standard start and end for a period.
func PeriodBounds(p Period) (Clock, Clock, error) {
	switch p {
	case PeriodMorning:
		return MorningStart, MorningEnd, nil
	case PeriodAfternoon:
		return AfternoonStart, AfternoonEnd, nil
	}
	return 0, 0, fmt.Errorf("unknown period %q", p)
}

// PeriodOf classifies a start time: anything starting before 14:30 is morning.
func PeriodOf(start Clock) Period {
	if start < MorningEnd {
		return PeriodMorning
	}
	return PeriodAfternoon
}

var dayNames = map[string]int{
	"dilluns": 1, "dimarts": 2, "dimecres": 3, "dijous": 4, "divendres": 5, "dissabte": 6, "diumenge": 7,
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4, "friday": 5, "saturday": 6, "sunday": 7,
	"dl": 1, "dt": 2, "dc": 3, "dj": 4, "dv": 5,
	"mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5,
}

// ParseDay accepts 1..7 or a Catalan/English day name or abbreviation.
func ParseDay(s string) (int, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(raw); err == nil {
		if n >= 1 && n <= 7 {
			return n, nil
		}
		return 0, fmt.Errorf("day out of range: %d", n)
	}
	raw = strings.TrimSuffix(raw, ".")
	if d, ok := dayNames[raw]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

// DayName returns the Catalan weekday name.
func DayName(day int) string {
	names := [...]string{"", "Dilluns", "Dimarts", "Dimecres", "Dijous", "Divendres", "Dissabte", "Diumenge"}
	if day < 1 || day > 7 {
		return ""
	}
	return names[day]
}
