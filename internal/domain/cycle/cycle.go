package cycle

import (
	"database/sql"
	"time"
)

// Cycle is one bounded coaching period for a single client goal.
// StartDate must not change once reflections exist for the cycle.
type Cycle struct {
	ID                 int64
	ClientID           int64
	CoachID            int64
	GoalID             int64
	StartDate          time.Time
	EndDate            sql.NullTime
	Cadence            Cadence
	StakeholderCadence StakeholderCadence
	CreatedAt          time.Time
}

// Midnight truncates t to the start of its calendar day in t's own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Both are compared as dates
// so a DST transition in between never shifts the count.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// start returns the midnight-normalized start date.
func (c Cycle) start() time.Time {
	return Midnight(c.StartDate)
}

// InLocation pins the start and end dates to midnight in loc, keeping their
// calendar dates. Date columns decode with a zero offset, so this has to run
// before any week arithmetic.
func (c Cycle) InLocation(loc *time.Location) Cycle {
	if loc == nil {
		return c
	}
	c.StartDate = DateIn(c.StartDate, loc)
	if c.EndDate.Valid {
		c.EndDate.Time = DateIn(c.EndDate.Time, loc)
	}
	return c
}

// DateIn returns midnight of t's calendar date in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// BeforeStart reports whether date falls on a day before the cycle started.
func (c Cycle) BeforeStart(date time.Time) bool {
	start := c.start()
	return Midnight(date.In(start.Location())).Before(start)
}

// WeekNumber returns the 1-based cycle week containing asOf. Weeks are
// counted in whole 7-day periods from the start date; a cycle is always in
// week 1 or later, even before it starts.
func (c Cycle) WeekNumber(asOf time.Time) int {
	start := c.start()
	asOf = Midnight(asOf.In(start.Location()))
	week := floorDiv(daysBetween(start, asOf), 7) + 1
	if week < 1 {
		return 1
	}
	return week
}

// anchorMonday returns the Monday of the calendar week containing the start
// date. A Sunday start anchors six days back, never forward.
func (c Cycle) anchorMonday() time.Time {
	start := c.start()
	offset := int(WeekdayOf(start.Weekday()) - Monday)
	return start.AddDate(0, 0, -offset)
}

// DateForSlot returns the calendar date of the given weekday in the given
// cycle week. Scheduling is Monday-relative even when the cycle starts mid-week.
func (c Cycle) DateForSlot(week int, day Weekday) time.Time {
	return c.anchorMonday().AddDate(0, 0, (week-1)*7+int(day-Monday))
}

// WeekEnd returns the Sunday closing the given cycle week.
func (c Cycle) WeekEnd(week int) time.Time {
	return c.DateForSlot(week, Sunday)
}

// HasEnded reports whether now is past the cycle's end date.
func (c Cycle) HasEnded(now time.Time) bool {
	if !c.EndDate.Valid {
		return false
	}
	end := Midnight(c.EndDate.Time.In(c.start().Location()))
	return Midnight(now.In(end.Location())).After(end)
}

// Active reports whether the cycle has started and not yet ended.
func (c Cycle) Active(now time.Time) bool {
	return !c.BeforeStart(now) && !c.HasEnded(now)
}

// CurrentWeek is WeekNumber clamped to the week of the end date once the
// cycle is over.
func (c Cycle) CurrentWeek(now time.Time) int {
	week := c.WeekNumber(now)
	if c.EndDate.Valid {
		if last := c.WeekNumber(c.EndDate.Time); week > last {
			return last
		}
	}
	return week
}
