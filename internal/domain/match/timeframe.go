package match

import "time"

const (
	FrameAll      = "all"
	FrameOld      = "old"
	FrameThisWeek = "this_week"
	FrameNextWeek = "next_week"
	FrameRecent   = "recent"
	FrameLater    = "later"
)

// TimeFlags is the calendar classification of a match start relative to a
// reference clock. Weeks run Monday through Sunday.
type TimeFlags struct {
	InCurrentWeek bool
	InNextWeek    bool
	InNext7Days   bool
	InNext15Days  bool
	IsOld         bool
	IsRecent      bool
	IsLater       bool
}

// Classify buckets start against now. Both instants are reduced to calendar
// dates in the reference zone before comparison, so a late-evening kickoff
// lands in the same bucket as an afternoon one.
func Classify(now, start time.Time) TimeFlags {
	nowDate := dateOnly(now)
	startDate := dateOnly(start)

	currentWeekStart := nowDate.AddDate(0, 0, -mondayOffset(nowDate))
	currentWeekEnd := currentWeekStart.AddDate(0, 0, 6)
	nextWeekStart := currentWeekEnd.AddDate(0, 0, 1)
	nextWeekEnd := currentWeekEnd.AddDate(0, 0, 7)

	flags := TimeFlags{
		InCurrentWeek: within(startDate, currentWeekStart, currentWeekEnd),
		InNextWeek:    within(startDate, nextWeekStart, nextWeekEnd),
		InNext7Days:   within(startDate, nowDate, nowDate.AddDate(0, 0, 7)),
		InNext15Days:  within(startDate, nowDate, nowDate.AddDate(0, 0, 15)),
		IsOld:         startDate.Before(nowDate),
		IsLater:       startDate.After(nextWeekEnd),
	}
	flags.IsRecent = flags.InCurrentWeek || flags.InNextWeek
	return flags
}

func (f TimeFlags) Meets(frame string) bool {
	switch frame {
	case FrameAll:
		return true
	case FrameOld:
		return f.IsOld
	case FrameThisWeek:
		return f.InCurrentWeek && !f.IsOld
	case FrameNextWeek:
		return f.InNextWeek
	case FrameRecent:
		return (f.InNextWeek || f.InCurrentWeek) && !f.IsOld
	case FrameLater:
		return f.IsLater
	default:
		return true
	}
}

// mondayOffset counts days since the most recent Monday.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
