package checkin

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monday 2025-03-03
func testCycle(cad cycle.Cadence) cycle.Cycle {
	return cycle.Cycle{ID: 1, StartDate: day(2025, time.March, 3), Cadence: cad}
}

func checkInAt(week int, d cycle.Weekday) Reflection {
	return Reflection{Week: week, Slot: CheckIn(d), Effort: Score(7), Performance: Score(6)}
}

func TestParseSlotType(t *testing.T) {
	cad := cycle.Cadence{cycle.Monday, cycle.Wednesday, cycle.Friday}
	tests := []struct {
		tag     string
		want    SlotType
		wantErr bool
	}{
		{tag: "intention", want: Intention()},
		{tag: "INTENTION", want: Intention()},
		{tag: "checkin:wed", want: CheckIn(cycle.Wednesday)},
		{tag: "CHECK_IN_FRI", want: CheckIn(cycle.Friday)},
		{tag: "CHECKIN_MONDAY", want: CheckIn(cycle.Monday)},
		{tag: "RATING_A", want: CheckIn(cycle.Monday)},
		{tag: "RATING_C", want: CheckIn(cycle.Friday)},
		{tag: "RATING_D", wantErr: true},
		{tag: "CHECK_IN_XYZ", wantErr: true},
		{tag: "mood", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseSlotType(tt.tag, cad)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownSlotType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotTypeString(t *testing.T) {
	assert.Equal(t, "intention", Intention().String())
	assert.Equal(t, "checkin:thu", CheckIn(cycle.Thursday).String())

	parsed, err := ParseSlotType(CheckIn(cycle.Sunday).String(), nil)
	require.NoError(t, err)
	assert.Equal(t, CheckIn(cycle.Sunday), parsed)
}

func TestClassifySlot_Precedence(t *testing.T) {
	now := day(2025, time.March, 6)
	past := day(2025, time.March, 5)
	future := day(2025, time.March, 7)
	weekEnd := day(2025, time.March, 9)

	tests := []struct {
		name string
		in   SlotInput
		want SlotState
	}{
		{name: "submitted wins over future", in: SlotInput{Date: future, WeekEnd: weekEnd, Submitted: true}, want: StateCompleted},
		{name: "submitted wins over lock", in: SlotInput{Date: past, WeekEnd: weekEnd, Submitted: true, Locked: true}, want: StateCompleted},
		{name: "locked wins over future", in: SlotInput{Date: future, WeekEnd: weekEnd, Locked: true}, want: StateMissed},
		{name: "past and locked", in: SlotInput{Date: past, WeekEnd: weekEnd, Locked: true}, want: StateMissed},
		{name: "past, unlocked, week running", in: SlotInput{Date: past, WeekEnd: weekEnd}, want: StateOpen},
		{name: "today is open", in: SlotInput{Date: now, WeekEnd: weekEnd}, want: StateOpen},
		{name: "week elapsed", in: SlotInput{Date: day(2025, time.February, 26), WeekEnd: day(2025, time.March, 2)}, want: StateMissed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySlot(tt.in, now))
		})
	}
}

func TestBuildWeeklySchedule_ThursdayNoSubmissions(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Wednesday, cycle.Friday})
	thursday := time.Date(2025, time.March, 6, 14, 0, 0, 0, time.UTC)

	sched := BuildWeeklySchedule(c, 1, IndexSubmissions(nil), thursday)

	require.Len(t, sched.Slots, 2)
	assert.False(t, sched.Locked)
	assert.Equal(t, cycle.Wednesday, sched.Slots[0].Day)
	assert.Equal(t, StateOpen, sched.Slots[0].State)
	assert.Equal(t, cycle.Friday, sched.Slots[1].Day)
	assert.Equal(t, StateUpcoming, sched.Slots[1].State)
}

func TestBuildWeeklySchedule_LockedByNextWeek(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Monday, cycle.Wednesday, cycle.Friday})
	now := day(2025, time.March, 7) // friday of week 1

	for name, next := range map[string]Reflection{
		"intention":     {Week: 2, Slot: Intention()},
		"first checkin": checkInAt(2, cycle.Monday),
	} {
		t.Run(name, func(t *testing.T) {
			subs := IndexSubmissions([]Reflection{checkInAt(1, cycle.Monday), next})
			sched := BuildWeeklySchedule(c, 1, subs, now)

			assert.True(t, sched.Locked)
			assert.Equal(t, StateCompleted, sched.Slots[0].State)
			assert.Equal(t, StateMissed, sched.Slots[1].State)
			assert.Equal(t, StateMissed, sched.Slots[2].State)
			for _, slot := range sched.Slots {
				assert.NotEqual(t, StateOpen, slot.State)
			}
		})
	}
}

func TestBuildWeeklySchedule_LockedMidWeek(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Monday, cycle.Friday})
	wednesday := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	subs := IndexSubmissions([]Reflection{{Week: 2, Slot: Intention()}})

	sched := BuildWeeklySchedule(c, 1, subs, wednesday)

	assert.True(t, sched.Locked)
	require.Len(t, sched.Slots, 2)
	for _, slot := range sched.Slots {
		assert.Equal(t, StateMissed, slot.State, slot.Day.String())
		assert.False(t, slot.State.Pending())
	}
	assert.Equal(t, 2, sched.Count(StateMissed))
}

func TestBuildWeeklySchedule_SkipsDaysBeforeStart(t *testing.T) {
	c := cycle.Cycle{ID: 1, StartDate: day(2025, time.March, 5), Cadence: cycle.Cadence{cycle.Monday, cycle.Friday}}
	tuesday := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)

	first := BuildWeeklySchedule(c, 1, IndexSubmissions(nil), tuesday)
	require.Len(t, first.Slots, 1)
	assert.Equal(t, cycle.Friday, first.Slots[0].Day)
	assert.Equal(t, StateUpcoming, first.Slots[0].State)

	second := BuildWeeklySchedule(c, 2, IndexSubmissions(nil), tuesday)
	assert.Len(t, second.Slots, 2)

	mondayOnly := cycle.Cycle{ID: 2, StartDate: day(2025, time.March, 5), Cadence: cycle.Cadence{cycle.Monday}}
	sched := BuildWeeklySchedule(mondayOnly, 1, IndexSubmissions(nil), tuesday)
	assert.Empty(t, sched.Slots)
	assert.Equal(t, 0, Summarize(BuildHistory(mondayOnly, 1, IndexSubmissions(nil), tuesday)).TotalExpected)
}

func TestIndexSubmissions_IgnoresUnresolvedSlot(t *testing.T) {
	subs := IndexSubmissions([]Reflection{{Week: 1, Slot: SlotType{}}, {Week: 1, Slot: SlotType{Kind: KindCheckIn}}})
	assert.False(t, subs.Has(1, SlotType{}))
	assert.False(t, subs.Has(1, SlotType{Kind: KindCheckIn}))
	assert.True(t, CheckIn(cycle.Monday).IsCheckIn())
	assert.False(t, Intention().IsCheckIn())
	assert.True(t, Intention().IsIntention())
}

func TestBuildWeeklySchedule_LaterCheckInDoesNotLock(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Monday, cycle.Friday})
	subs := IndexSubmissions([]Reflection{checkInAt(2, cycle.Friday)})
	sched := BuildWeeklySchedule(c, 1, subs, day(2025, time.March, 7))
	assert.False(t, sched.Locked)
}

func TestBuildWeeklySchedule_Idempotent(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Tuesday, cycle.Thursday})
	subs := IndexSubmissions([]Reflection{checkInAt(1, cycle.Tuesday), checkInAt(2, cycle.Tuesday)})
	now := day(2025, time.March, 13)

	first := BuildWeeklySchedule(c, 2, subs, now)
	second := BuildWeeklySchedule(c, 2, subs, now)
	assert.Equal(t, first, second)
}

func TestIndexSubmissions_IgnoresBaseline(t *testing.T) {
	subs := IndexSubmissions([]Reflection{{Week: BaselineWeek, Slot: Intention()}})
	assert.False(t, subs.Has(0, Intention()))
	assert.False(t, subs.Locked(-1, cycle.Cadence{cycle.Friday}))
}

func TestStreaks(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Monday, cycle.Wednesday, cycle.Friday})
	// Week 1 complete, week 2 misses Wednesday, week 3 Monday+Wednesday done,
	// today is Thursday of week 3 so Friday is upcoming.
	reflections := []Reflection{
		checkInAt(1, cycle.Monday), checkInAt(1, cycle.Wednesday), checkInAt(1, cycle.Friday),
		checkInAt(2, cycle.Monday), checkInAt(2, cycle.Friday),
		checkInAt(3, cycle.Monday), checkInAt(3, cycle.Wednesday),
	}
	now := day(2025, time.March, 20)
	history := BuildHistory(c, c.WeekNumber(now), IndexSubmissions(reflections), now)
	require.Len(t, history, 3)

	sum := Summarize(history)
	assert.Equal(t, 3, sum.CurrentStreak) // week2 fri, week3 mon+wed
	assert.Equal(t, 4, sum.BestStreak)    // week1 x3 + week2 mon
	assert.Equal(t, 7, sum.TotalCompleted)
	assert.Equal(t, 8, sum.TotalExpected)
	assert.GreaterOrEqual(t, sum.BestStreak, sum.CurrentStreak)

	rate, ok := sum.CompletionRate()
	require.True(t, ok)
	assert.InDelta(t, 0.875, rate, 1e-9)
}

func TestCurrentStreak_OpenSlotDoesNotBreak(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Monday, cycle.Wednesday})
	reflections := []Reflection{checkInAt(1, cycle.Monday), checkInAt(1, cycle.Wednesday)}
	now := day(2025, time.March, 12) // wednesday of week 2, monday still open
	history := BuildHistory(c, 2, IndexSubmissions(reflections), now)

	assert.Equal(t, StateOpen, history[1].Slots[0].State)
	assert.Equal(t, 2, CurrentStreak(history))
}

func TestStreaks_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, StreakSummary{}, sum)
	_, ok := sum.CompletionRate()
	assert.False(t, ok)
}

func TestStreaks_BestAlwaysCoversCurrent(t *testing.T) {
	c := testCycle(cycle.Cadence{cycle.Tuesday, cycle.Thursday, cycle.Saturday})
	now := day(2025, time.April, 3)
	weeks := c.WeekNumber(now)
	// every combination of a 6-slot prefix
	for mask := 0; mask < 1<<6; mask++ {
		var reflections []Reflection
		for i := 0; i < 6; i++ {
			if mask&(1<<i) != 0 {
				reflections = append(reflections, checkInAt(i/3+1, c.Cadence[i%3]))
			}
		}
		history := BuildHistory(c, weeks, IndexSubmissions(reflections), now)
		assert.GreaterOrEqual(t, BestStreak(history), CurrentStreak(history))
	}
}

func TestBuildWeeklySchedule_LocalMorning(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)
	stored := cycle.Cycle{
		ID:        1,
		StartDate: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.FixedZone("", 0)),
		Cadence:   cycle.Cadence{cycle.Wednesday},
	}
	c := stored.InLocation(auckland)
	wednesdayMorning := time.Date(2025, time.March, 5, 8, 0, 0, 0, auckland)

	sched := BuildWeeklySchedule(c, c.WeekNumber(wednesdayMorning), IndexSubmissions(nil), wednesdayMorning)

	require.Len(t, sched.Slots, 1)
	assert.Equal(t, StateOpen, sched.Slots[0].State)
	assert.Equal(t, 2, c.WeekNumber(time.Date(2025, time.March, 10, 8, 0, 0, 0, auckland)))
}
