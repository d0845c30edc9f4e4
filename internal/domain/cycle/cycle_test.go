package cycle

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseCadence(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   Cadence
	}{
		{name: "explicit weekdays", tokens: []string{"mon", "wed", "fri"}, want: Cadence{Monday, Wednesday, Friday}},
		{name: "unordered with duplicates", tokens: []string{"FRI", "mon", "fri"}, want: Cadence{Monday, Friday}},
		{name: "full names", tokens: []string{"Tuesday", "sunday"}, want: Cadence{Tuesday, Sunday}},
		{name: "density 3x", tokens: []string{"3x"}, want: Cadence{Monday, Wednesday, Friday}},
		{name: "density 2x", tokens: []string{"2x"}, want: Cadence{Tuesday, Friday}},
		{name: "density 1x", tokens: []string{"1x"}, want: Cadence{Friday}},
		{name: "empty input", tokens: nil, want: Cadence{Friday}},
		{name: "unknown tokens", tokens: []string{"5x", "someday", ""}, want: Cadence{Friday}},
		{name: "unknown mixed with valid", tokens: []string{"xyz", "thu"}, want: Cadence{Thursday}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCadence(tt.tokens))
		})
	}
}

func TestParseCadenceString(t *testing.T) {
	assert.Equal(t, Cadence{Monday, Wednesday, Friday}, ParseCadenceString("mon, wed,fri"))
	assert.Equal(t, Cadence{Tuesday, Friday}, ParseCadenceString(" 2x "))
	assert.Equal(t, "mon,wed,fri", ParseCadenceString("3x").String())
}

func TestParseCadence_DefaultIsNotShared(t *testing.T) {
	c := ParseCadence(nil)
	c[0] = Monday
	assert.Equal(t, Friday, DefaultCadence[0])
}

func TestWeekNumber(t *testing.T) {
	c := Cycle{StartDate: time.Date(2025, time.March, 5, 15, 30, 0, 0, time.UTC)} // Wednesday afternoon

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{name: "start day morning", asOf: date(2025, time.March, 5), want: 1},
		{name: "start day evening", asOf: time.Date(2025, time.March, 5, 23, 59, 0, 0, time.UTC), want: 1},
		{name: "six days in", asOf: date(2025, time.March, 11), want: 1},
		{name: "seven days in", asOf: date(2025, time.March, 12), want: 2},
		{name: "four weeks in", asOf: date(2025, time.April, 2), want: 5},
		{name: "before start clamps", asOf: date(2025, time.February, 1), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.WeekNumber(tt.asOf))
		})
	}
}

func TestWeekNumber_NonDecreasing(t *testing.T) {
	c := Cycle{StartDate: date(2025, time.January, 12)}
	prev := c.WeekNumber(c.StartDate)
	require.Equal(t, 1, prev)
	for h := 0; h < 24*120; h += 7 {
		got := c.WeekNumber(c.StartDate.Add(time.Duration(h) * time.Hour))
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestWeekNumber_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// DST starts 2025-03-09 in New York.
	c := Cycle{StartDate: time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)}
	assert.Equal(t, 2, c.WeekNumber(time.Date(2025, time.March, 10, 0, 0, 0, 0, loc)))
	assert.Equal(t, 1, c.WeekNumber(time.Date(2025, time.March, 9, 23, 0, 0, 0, loc)))
}

func TestDateForSlot(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		week  int
		day   Weekday
		want  time.Time
	}{
		{name: "monday start", start: date(2025, time.March, 3), week: 1, day: Wednesday, want: date(2025, time.March, 5)},
		{name: "midweek start anchors back to monday", start: date(2025, time.March, 5), week: 1, day: Monday, want: date(2025, time.March, 3)},
		{name: "sunday start anchors six days back", start: date(2025, time.March, 9), week: 1, day: Friday, want: date(2025, time.March, 7)},
		{name: "third week", start: date(2025, time.March, 5), week: 3, day: Friday, want: date(2025, time.March, 21)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cycle{StartDate: tt.start}
			assert.Equal(t, tt.want, c.DateForSlot(tt.week, tt.day))
		})
	}
}

func TestDateForSlot_RoundTrip(t *testing.T) {
	for offset := 0; offset < 7; offset++ {
		c := Cycle{StartDate: date(2025, time.June, 1).AddDate(0, 0, offset)}
		for week := 1; week <= 6; week++ {
			for day := Monday; day <= Sunday; day++ {
				got := c.DateForSlot(week, day)
				assert.Equal(t, day, WeekdayOf(got.Weekday()))
				assert.Equal(t, 7*24*time.Hour, c.DateForSlot(week+1, day).Sub(got))
			}
		}
	}
}

func TestCurrentWeek_ClampsToEndDate(t *testing.T) {
	c := Cycle{
		StartDate: date(2025, time.March, 3),
		EndDate:   sql.NullTime{Time: date(2025, time.March, 30), Valid: true},
	}
	assert.Equal(t, 4, c.CurrentWeek(date(2025, time.May, 1)))
	assert.Equal(t, 2, c.CurrentWeek(date(2025, time.March, 11)))
	assert.True(t, c.HasEnded(date(2025, time.March, 31)))
	assert.False(t, c.HasEnded(date(2025, time.March, 30)))
	assert.True(t, c.Active(date(2025, time.March, 3)))
	assert.False(t, c.Active(date(2025, time.March, 2)))
}

func TestStakeholderCadencePeriod(t *testing.T) {
	assert.Equal(t, 3, StakeholderWeekly.Period(3))
	assert.Equal(t, 1, StakeholderBiweekly.Period(1))
	assert.Equal(t, 1, StakeholderBiweekly.Period(2))
	assert.Equal(t, 2, StakeholderBiweekly.Period(3))
	assert.Equal(t, StakeholderBiweekly, ParseStakeholderCadence("BiWeekly"))
	assert.Equal(t, StakeholderWeekly, ParseStakeholderCadence("monthly"))
}

func TestInLocation_KeepsCalendarDate(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	stored := Cycle{
		StartDate: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.FixedZone("", 0)),
		EndDate:   sql.NullTime{Time: time.Date(2025, time.March, 30, 0, 0, 0, 0, time.FixedZone("", 0)), Valid: true},
		Cadence:   Cadence{Wednesday},
	}
	c := stored.InLocation(auckland)

	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, auckland), c.StartDate)
	assert.Equal(t, time.Date(2025, time.March, 30, 0, 0, 0, 0, auckland), c.EndDate.Time)

	monday := time.Date(2025, time.March, 10, 8, 0, 0, 0, auckland)
	assert.Equal(t, 1, stored.WeekNumber(monday), "zero offset start still reads sunday evening in utc")
	assert.Equal(t, 2, c.WeekNumber(monday))
	assert.Equal(t, time.Date(2025, time.March, 5, 0, 0, 0, 0, auckland), c.DateForSlot(1, Wednesday))

	assert.Equal(t, stored, stored.InLocation(nil))
}

func TestBeforeStart(t *testing.T) {
	c := Cycle{StartDate: date(2025, time.March, 5)} // wednesday

	assert.True(t, c.BeforeStart(c.DateForSlot(1, Monday)))
	assert.True(t, c.BeforeStart(time.Date(2025, time.March, 4, 23, 0, 0, 0, time.UTC)))
	assert.False(t, c.BeforeStart(date(2025, time.March, 5)))
	assert.False(t, c.BeforeStart(c.DateForSlot(1, Friday)))
	assert.False(t, c.Active(date(2025, time.March, 4)))
}
