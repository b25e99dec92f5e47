package match

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ReferenceTimezone is the single zone every match start is anchored to,
// regardless of the zone or format the provider delivered it in.
const ReferenceTimezone = "America/New_York"

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrUnknownSport      = errors.New("unknown sport")
)

var (
	locationOnce sync.Once
	location     *time.Location
)

// Location returns the reference zone, falling back to a fixed UTC-5 offset
// when the zone database is unavailable.
func Location() *time.Location {
	locationOnce.Do(func() {
		loc, err := time.LoadLocation(ReferenceTimezone)
		if err != nil {
			loc = time.FixedZone("EST", -5*60*60)
		}
		location = loc
	})
	return location
}

// Match is the canonical representation every provider payload is mapped to.
// Values are immutable after construction; derived fields are computed once
// against the clock passed to New.
type Match struct {
	ID      int64
	Sport   string
	League  string
	Home    string
	Away    string
	Start   time.Time
	Details string

	Date      time.Time
	TimeOfDay string
	Weekday   string
	Frame     TimeFlags
}

type Params struct {
	ID      int64
	Sport   string
	League  string
	Home    string
	Away    string
	Start   time.Time
	Details string
}

// New builds a Match from already-parsed fields. Start is normalized to the
// reference zone and classification runs against the supplied now, keeping
// construction deterministic for callers that control the clock.
func New(p Params, now time.Time) Match {
	start := NormalizeStart(p.Start)
	return Match{
		ID:        p.ID,
		Sport:     p.Sport,
		League:    p.League,
		Home:      p.Home,
		Away:      p.Away,
		Start:     start,
		Details:   p.Details,
		Date:      dateOnly(start),
		TimeOfDay: start.Format("15:04"),
		Weekday:   strings.ToUpper(start.Format("Mon")),
		Frame:     Classify(now, start),
	}
}

// NewFromWire parses a provider-supplied start timestamp before construction.
func NewFromWire(p Params, rawStart string, now time.Time) (Match, error) {
	start, err := ParseStart(rawStart)
	if err != nil {
		return Match{}, err
	}
	p.Start = start
	return New(p, now), nil
}

// ParseStart accepts ISO-8601 date-times, including the literal Z UTC
// designator, which is rewritten to an explicit +00:00 offset before parsing.
func ParseStart(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDateFormat)
	}
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+00:00"
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, raw)
	}
	return NormalizeStart(parsed), nil
}

// NormalizeStart converts an instant to the reference zone.
func NormalizeStart(t time.Time) time.Time {
	return t.In(Location())
}

func (m Match) String() string {
	return fmt.Sprintf("%s vs %s at %s", m.Home, m.Away, m.Start.Format("2006-01-02 15:04:05-07:00"))
}

// Abbreviation is the short sport tag shown on cards: football collapses to
// FOT, every other sport shows its league.
func (m Match) Abbreviation() string {
	if m.Sport == string(SportFootball) {
		return "FOT"
	}
	return m.League
}

// Card renders the one-line display form. The time label reflects the flag
// priority current week, next week, old, later.
func (m Match) Card(withTimeLabel bool) string {
	label := ""
	if withTimeLabel {
		switch {
		case m.Frame.InCurrentWeek:
			label = "--next"
		case m.Frame.InNextWeek:
			label = "--next_week"
		case m.Frame.IsOld:
			label = "--is_old"
		default:
			label = "--later ->"
		}
	}
	return fmt.Sprintf("%s %s -> %s, (%s)", label, m.Weekday, m, m.Abbreviation())
}

// MeetsTimeFrame reports whether the match belongs to the named frame.
// Unrecognized frames are permissive and select everything.
func (m Match) MeetsTimeFrame(frame string) bool {
	return m.Frame.Meets(frame)
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.In(Location()).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, Location())
}
