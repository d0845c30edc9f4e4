package checkin

// StreakSummary describes check-in consistency over the cycle so far.
type StreakSummary struct {
	CurrentStreak  int
	BestStreak     int
	TotalCompleted int
	TotalExpected  int
}

// CompletionRate returns completed/expected. ok is false when nothing was
// due yet.
func (s StreakSummary) CompletionRate() (rate float64, ok bool) {
	if s.TotalExpected == 0 {
		return 0, false
	}
	return float64(s.TotalCompleted) / float64(s.TotalExpected), true
}

// flatten lays the schedules out in canonical order: week ascending, then
// cadence day ascending.
func flatten(history []WeeklySchedule) []Slot {
	var out []Slot
	for _, week := range history {
		out = append(out, week.Slots...)
	}
	return out
}

// CurrentStreak counts consecutive completed slots ending at now. Trailing
// slots that can still be submitted neither count nor break the run.
func CurrentStreak(history []WeeklySchedule) int {
	slots := flatten(history)
	i := len(slots) - 1
	for i >= 0 && slots[i].State.Pending() {
		i--
	}
	streak := 0
	for ; i >= 0 && slots[i].State == StateCompleted; i-- {
		streak++
	}
	return streak
}

// BestStreak is the longest run of completed slots anywhere in history.
func BestStreak(history []WeeklySchedule) int {
	best, run := 0, 0
	for _, slot := range flatten(history) {
		if slot.State != StateCompleted {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}

// Summarize computes the full StreakSummary. Upcoming slots are not yet
// expected.
func Summarize(history []WeeklySchedule) StreakSummary {
	sum := StreakSummary{
		CurrentStreak: CurrentStreak(history),
		BestStreak:    BestStreak(history),
	}
	for _, slot := range flatten(history) {
		if slot.State == StateUpcoming {
			continue
		}
		sum.TotalExpected++
		if slot.State == StateCompleted {
			sum.TotalCompleted++
		}
	}
	return sum
}
