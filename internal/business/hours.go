package business

import (
	"fmt"
	"strings"
	"time"
)

const closedMarker = "geschlossen"

// dayHours is one weekday: minutes since midnight, close inclusive.
type dayHours struct {
	raw         string
	open, close int
	closed      bool
}

type weekHours map[time.Weekday]dayHours

var weekdayKeys = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

var germanDayAbbrev = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

func parseWeekHours(raw map[string]string) (weekHours, error) {
	out := make(weekHours, len(raw))
	for key, value := range raw {
		day, ok := weekdayKeys[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidData, key)
		}
		h, err := parseDayHours(value)
		if err != nil {
			return nil, fmt.Errorf("%w: opening_hours.%s: %v", ErrInvalidData, key, err)
		}
		out[day] = h
	}
	return out, nil
}

func parseDayHours(value string) (dayHours, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, closedMarker) {
		return dayHours{raw: closedMarker, closed: true}, nil
	}
	start, end, ok := strings.Cut(value, "-")
	if !ok {
		return dayHours{}, fmt.Errorf("want HH:MM-HH:MM, got %q", value)
	}
	open, err := parseClock(start)
	if err != nil {
		return dayHours{}, err
	}
	closeAt, err := parseClock(end)
	if err != nil {
		return dayHours{}, err
	}
	if closeAt <= open {
		return dayHours{}, fmt.Errorf("closing time %s is not after opening time %s", end, start)
	}
	return dayHours{raw: value, open: open, close: closeAt}, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (w weekHours) summary() string {
	if len(w) == 0 {
		return ""
	}
	parts := make([]string, 0, 7)
	// Monday first, the way opening hours are usually printed.
	for i := 1; i <= 7; i++ {
		day := time.Weekday(i % 7)
		h, ok := w[day]
		if !ok {
			h = dayHours{raw: closedMarker, closed: true}
		}
		parts = append(parts, germanDayAbbrev[day]+" "+h.raw)
	}
	return strings.Join(parts, ", ")
}

// CheckOpen reports whether t falls into the opening hours of its weekday in
// the salon's time zone. The closing minute itself still counts as open.
// A day missing from the data is closed.
func (c *Catalog) CheckOpen(t time.Time) error {
	local := t.In(c.loc)
	h, ok := c.hours[local.Weekday()]
	if !ok || h.closed {
		return ErrClosed
	}
	minutes := local.Hour()*60 + local.Minute()
	if minutes < h.open || minutes > h.close {
		return fmt.Errorf("%w (%s)", ErrOutsideHours, h.raw)
	}
	return nil
}

// HoursOn returns the raw opening hours for t's weekday, e.g. "09:00-18:00".
func (c *Catalog) HoursOn(t time.Time) string {
	h, ok := c.hours[t.In(c.loc).Weekday()]
	if !ok {
		return closedMarker
	}
	return h.raw
}

// At interprets an ISO date and an HH:MM time as wall clock time in the
// salon's time zone.
func (c *Catalog) At(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("business: parse appointment time: %w", err)
	}
	return t, nil
}
