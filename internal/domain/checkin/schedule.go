package checkin

import (
	"time"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// Slot is one expected check-in occurrence and its state as of "now".
type Slot struct {
	Week  int
	Day   cycle.Weekday
	Date  time.Time
	State SlotState
}

// WeeklySchedule lists the slots of one cycle week in cadence order.
type WeeklySchedule struct {
	Week   int
	Locked bool
	Slots  []Slot
}

// Count returns how many slots are in state s.
func (w WeeklySchedule) Count(s SlotState) int {
	n := 0
	for _, slot := range w.Slots {
		if slot.State == s {
			n++
		}
	}
	return n
}

// SlotInput is everything ClassifySlot needs about one slot.
type SlotInput struct {
	Date      time.Time // scheduled date
	WeekEnd   time.Time // Sunday closing the slot's week
	Submitted bool
	Locked    bool
}

// ClassifySlot applies the completion rules in precedence order:
// completed, missed when locked, upcoming (date after today), missed once the
// week is over, open. A locked week is final, so even its future slots are missed.
func ClassifySlot(in SlotInput, now time.Time) SlotState {
	today := cycle.Midnight(now.In(in.Date.Location()))
	switch {
	case in.Submitted:
		return StateCompleted
	case in.Locked:
		return StateMissed
	case cycle.Midnight(in.Date).After(today):
		return StateUpcoming
	case !in.WeekEnd.IsZero() && today.After(cycle.Midnight(in.WeekEnd)):
		return StateMissed
	default:
		return StateOpen
	}
}

// Submissions indexes the reflections of one cycle by week and slot.
type Submissions struct {
	bySlot map[int]map[SlotType]bool
}

// IndexSubmissions builds a lookup over reflections. Baseline (week 0)
// records and unresolved slot types are kept out.
func IndexSubmissions(reflections []Reflection) Submissions {
	idx := Submissions{bySlot: make(map[int]map[SlotType]bool)}
	for _, r := range reflections {
		if r.Week <= BaselineWeek || !(r.Slot.IsIntention() || r.Slot.IsCheckIn()) {
			continue
		}
		week, ok := idx.bySlot[r.Week]
		if !ok {
			week = make(map[SlotType]bool)
			idx.bySlot[r.Week] = week
		}
		week[r.Slot] = true
	}
	return idx
}

// Has reports whether a reflection exists for (week, slot).
func (s Submissions) Has(week int, slot SlotType) bool {
	return s.bySlot[week][slot]
}

// Locked reports whether week is closed out because the client already
// moved on to the next week's intention or first check-in.
func (s Submissions) Locked(week int, cad cycle.Cadence) bool {
	next := week + 1
	return s.Has(next, Intention()) || s.Has(next, CheckIn(cad.First()))
}

// BuildWeeklySchedule classifies every cadence slot of the given week.
// Week must be >= 1. Week-1 slots dated before the start date are not expected
// and are left out.
func BuildWeeklySchedule(c cycle.Cycle, week int, subs Submissions, now time.Time) WeeklySchedule {
	locked := subs.Locked(week, c.Cadence)
	weekEnd := c.WeekEnd(week)
	slots := make([]Slot, 0, len(c.Cadence))
	for _, day := range c.Cadence {
		date := c.DateForSlot(week, day)
		if c.BeforeStart(date) {
			continue
		}
		slots = append(slots, Slot{
			Week: week,
			Day:  day,
			Date: date,
			State: ClassifySlot(SlotInput{
				Date:      date,
				WeekEnd:   weekEnd,
				Submitted: subs.Has(week, CheckIn(day)),
				Locked:    locked,
			}, now),
		})
	}
	return WeeklySchedule{Week: week, Locked: locked, Slots: slots}
}

// BuildHistory returns schedules for weeks 1..through in order.
func BuildHistory(c cycle.Cycle, through int, subs Submissions, now time.Time) []WeeklySchedule {
	if through < 1 {
		return nil
	}
	out := make([]WeeklySchedule, 0, through)
	for week := 1; week <= through; week++ {
		out = append(out, BuildWeeklySchedule(c, week, subs, now))
	}
	return out
}
