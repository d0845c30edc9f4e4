package cycle

import (
	"sort"
	"strings"
	"time"
)

// Weekday numbers days Monday-first: Monday=1 ... Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTokens = map[Weekday]string{
	Monday:    "mon",
	Tuesday:   "tue",
	Wednesday: "wed",
	Thursday:  "thu",
	Friday:    "fri",
	Saturday:  "sat",
	Sunday:    "sun",
}

// String returns the short lowercase token, e.g. "wed".
func (d Weekday) String() string {
	if tok, ok := weekdayTokens[d]; ok {
		return tok
	}
	return "invalid"
}

// Valid reports whether d is one of Monday..Sunday.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// WeekdayOf converts a time.Weekday (Sunday=0) into the Monday-first numbering.
func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

// ParseWeekday accepts three-letter and full English day names, case-insensitive.
func ParseWeekday(token string) (Weekday, bool) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if len(tok) < 3 {
		return 0, false
	}
	for d, short := range weekdayTokens {
		if tok == short {
			return d, true
		}
		full := strings.ToLower(time.Weekday(int(d) % 7).String())
		if tok == full {
			return d, true
		}
	}
	return 0, false
}

// Cadence is the ordered set of weekdays on which check-ins are expected.
// Values built by ParseCadence are never empty.
type Cadence []Weekday

// legacyDensity maps the old "Nx per week" tokens onto a weekday set.
var legacyDensity = map[string]Cadence{
	"3x": {Monday, Wednesday, Friday},
	"2x": {Tuesday, Friday},
	"1x": {Friday},
}

// DefaultCadence is used whenever the stored frequency yields no weekday.
var DefaultCadence = Cadence{Friday}

// ParseCadence normalizes stored frequency tokens into a canonical Cadence.
// Density tokens ("1x", "2x", "3x") expand to their weekday set, unknown
// tokens are dropped, and an empty result falls back to DefaultCadence.
func ParseCadence(tokens []string) Cadence {
	seen := make(map[Weekday]bool)
	for _, raw := range tokens {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if days, ok := legacyDensity[tok]; ok {
			for _, d := range days {
				seen[d] = true
			}
			continue
		}
		if d, ok := ParseWeekday(tok); ok {
			seen[d] = true
		}
	}
	if len(seen) == 0 {
		return append(Cadence(nil), DefaultCadence...)
	}
	out := make(Cadence, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCadenceString splits a comma or whitespace separated list, e.g. "mon, wed,fri".
func ParseCadenceString(s string) Cadence {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	return ParseCadence(fields)
}

// First returns the earliest weekday of the cadence.
func (c Cadence) First() Weekday {
	if len(c) == 0 {
		return DefaultCadence[0]
	}
	return c[0]
}

// Tokens renders the cadence in its canonical stored form.
func (c Cadence) Tokens() []string {
	out := make([]string, len(c))
	for i, d := range c {
		out[i] = d.String()
	}
	return out
}

func (c Cadence) String() string {
	return strings.Join(c.Tokens(), ",")
}

// StakeholderCadence is how often stakeholders are asked to rate.
type StakeholderCadence string

const (
	StakeholderWeekly   StakeholderCadence = "weekly"
	StakeholderBiweekly StakeholderCadence = "biweekly"
)

// ParseStakeholderCadence defaults anything unrecognized to weekly.
func ParseStakeholderCadence(s string) StakeholderCadence {
	if StakeholderCadence(strings.ToLower(strings.TrimSpace(s))) == StakeholderBiweekly {
		return StakeholderBiweekly
	}
	return StakeholderWeekly
}

// Period maps a week number onto the stakeholder rating period containing it.
// Weekly periods are the weeks themselves; biweekly periods pair weeks 1-2, 3-4, ...
func (s StakeholderCadence) Period(week int) int {
	if s == StakeholderBiweekly {
		if week < 1 {
			return 0
		}
		return (week + 1) / 2
	}
	return week
}
