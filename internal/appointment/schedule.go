package appointment

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Stored display layouts. Both are rendered from the slot's UTC instant.
const (
	DateLayout = "01/02/2006"
	TimeLayout = "3:04 PM"
)

// Schedule is a calendar date plus a time of day, interpreted in UTC.
type Schedule struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func (s Schedule) Instant() time.Time {
	return time.Date(s.Year, s.Month, s.Day, s.Hour, s.Minute, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseSlot reads a slot instant sent by a client (RFC 3339, any offset).
// Stored rows only keep the minute, so instants with seconds are rejected.
func ParseSlot(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse slot time %q", raw)
	}
	t = t.UTC()
	if !t.Equal(t.Truncate(time.Minute)) {
		return time.Time{}, errors.Newf("slot time %q is not on a whole minute", raw)
	}
	return t, nil
}

// ParseSchedule combines a stored date and time of day. Dates are either
// year-first with dashes (2025-11-13) or month/day/year with slashes
// (11/13/2025, two-digit years are 20xx). Times are either 12-hour
// ("2:30 PM") or 24-hour ("14:30").
func ParseSchedule(date, timeOfDay string) (Schedule, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)

	var (
		sch Schedule
		err error
	)
	switch {
	case strings.Contains(date, "/"):
		sch, err = parseLocaleDate(date)
	case strings.Contains(date, "-"):
		sch, err = parseISODate(date)
	default:
		err = errors.Newf("unrecognised date %q", date)
	}
	if err != nil {
		return Schedule{}, errors.Mark(err, ErrMalformedRecord)
	}

	sch.Hour, sch.Minute, err = parseClock(timeOfDay)
	if err != nil {
		return Schedule{}, errors.Mark(err, ErrMalformedRecord)
	}
	return sch, nil
}

func parseISODate(s string) (Schedule, error) {
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return Schedule{}, errors.Wrapf(err, "parse date %q", s)
	}
	return Schedule{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func parseLocaleDate(s string) (Schedule, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Schedule{}, errors.Newf("parse date %q: want month/day/year", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Schedule{}, errors.Wrapf(err, "parse date %q", s)
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 {
		return Schedule{}, errors.Newf("parse date %q: month out of range", s)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return Schedule{}, errors.Newf("parse date %q: day out of range", s)
	}
	return Schedule{Year: year, Month: time.Month(month), Day: day}, nil
}

func parseClock(s string) (hour, minute int, err error) {
	upper := strings.ToUpper(s)
	pm := strings.HasSuffix(upper, "PM")
	am := strings.HasSuffix(upper, "AM")
	if am || pm {
		upper = strings.TrimSpace(upper[:len(upper)-2])
	}

	parts := strings.Split(upper, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, errors.Newf("parse time %q: want H:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parse time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parse time %q", s)
	}
	if minute < 0 || minute > 59 {
		return 0, 0, errors.Newf("parse time %q: minute out of range", s)
	}

	if am || pm {
		if hour < 1 || hour > 12 {
			return 0, 0, errors.Newf("parse time %q: hour out of range", s)
		}
		switch {
		case pm && hour < 12:
			hour += 12
		case am && hour == 12:
			hour = 0
		}
		return hour, minute, nil
	}

	if hour < 0 || hour > 23 {
		return 0, 0, errors.Newf("parse time %q: hour out of range", s)
	}
	return hour, minute, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
