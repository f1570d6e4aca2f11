// Package slots produces the canonical set of bookable pickup instants.
//
// Every slot is an absolute UTC instant. The calendar day and the business
// hours are both read in UTC so that the hours shown to customers do not
// move with the server's time zone.
package slots

import (
	"time"

	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
)

// Generate returns the bookable slots for cfg in chronological order.
// Weekends are skipped and only instants strictly after now are kept.
// The result depends on now, so callers recompute it per request.
func Generate(cfg config.Slots, now time.Time) []time.Time {
	if cfg.IntervalMinutes <= 0 || cfg.DaysAhead <= 0 || cfg.StartHour >= cfg.EndHour {
		return nil
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	perDay := (cfg.EndHour - cfg.StartHour) * ((59 / cfg.IntervalMinutes) + 1)
	out := make([]time.Time, 0, perDay*cfg.DaysAhead)

	for offset := 0; offset < cfg.DaysAhead; offset++ {
		day := today.AddDate(0, 0, offset)
		if IsWeekend(day) {
			continue
		}
		for hour := cfg.StartHour; hour < cfg.EndHour; hour++ {
			for minute := 0; minute < 60; minute += cfg.IntervalMinutes {
				slot := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
				if slot.After(now) {
					out = append(out, slot)
				}
			}
		}
	}
	return out
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// OnGrid reports whether t is a slot Generate could produce for cfg on its
// day: a weekday, inside business hours, on an interval boundary, with no
// seconds. The horizon and "now" are not checked.
func OnGrid(cfg config.Slots, t time.Time) bool {
	if cfg.IntervalMinutes <= 0 {
		return false
	}
	t = t.UTC()
	if t.Second() != 0 || t.Nanosecond() != 0 || IsWeekend(t) {
		return false
	}
	if t.Hour() < cfg.StartHour || t.Hour() >= cfg.EndHour {
		return false
	}
	return t.Minute()%cfg.IntervalMinutes == 0
}

// Set is a set of slot instants keyed by their Unix second.
type Set map[int64]struct{}

func (s Set) Add(t time.Time) {
	s[t.Unix()] = struct{}{}
}

func (s Set) Has(t time.Time) bool {
	_, ok := s[t.Unix()]
	return ok
}

// Available filters the generated slots against the booked set, keeping order.
func Available(all []time.Time, booked Set) []time.Time {
	out := make([]time.Time, 0, len(all))
	for _, s := range all {
		if !booked.Has(s) {
			out = append(out, s)
		}
	}
	return out
}
