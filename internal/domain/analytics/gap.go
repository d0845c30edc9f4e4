package analytics

import (
	"math"
	"sort"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// AlignmentRatio is the share of stakeholders whose latest feedback belongs
// to the current rating period. Only each stakeholder's single most recent
// feedback counts. Nil when the cycle has no stakeholders.
func AlignmentRatio(stakeholders []checkin.Stakeholder, feedback []checkin.Feedback, week int, cadence cycle.StakeholderCadence) *float64 {
	if len(stakeholders) == 0 {
		return nil
	}
	latest := LatestFeedback(feedback)
	period := cadence.Period(week)
	responded := 0
	for _, s := range stakeholders {
		f, ok := latest[s.ID]
		if ok && cadence.Period(f.Week) == period {
			responded++
		}
	}
	return floatPtr(float64(responded) / float64(len(stakeholders)))
}

// LatestFeedback picks each stakeholder's most recent feedback by
// SubmittedAt, the higher ID winning ties.
func LatestFeedback(feedback []checkin.Feedback) map[int64]checkin.Feedback {
	latest := make(map[int64]checkin.Feedback)
	for _, f := range feedback {
		cur, ok := latest[f.StakeholderID]
		if !ok || f.SubmittedAt.After(cur.SubmittedAt) ||
			(f.SubmittedAt.Equal(cur.SubmittedAt) && f.ID > cur.ID) {
			latest[f.StakeholderID] = f
		}
	}
	return latest
}

// GapDirection says which side rates higher.
type GapDirection string

const (
	HigherThanRaters GapDirection = "higher than raters"
	LowerThanRaters  GapDirection = "lower than raters"
	Aligned          GapDirection = "aligned"
)

// PerceptionGap compares the client's own weekly average with the raters'
// average on one dimension. Gap = SelfScore - RaterAvg.
type PerceptionGap struct {
	Dimension Dimension
	SelfScore float64
	RaterAvg  float64
	Gap       float64
}

// Direction labels the sign of the gap.
func (g PerceptionGap) Direction() GapDirection {
	switch {
	case g.Gap > 0:
		return HigherThanRaters
	case g.Gap < 0:
		return LowerThanRaters
	default:
		return Aligned
	}
}

// Significant reports |gap| >= threshold.
func (g PerceptionGap) Significant(threshold float64) bool {
	return math.Abs(g.Gap) >= threshold
}

// FindSignificantGaps keeps the gaps whose magnitude reaches threshold.
func FindSignificantGaps(gaps []PerceptionGap, threshold float64) []PerceptionGap {
	var out []PerceptionGap
	for _, g := range gaps {
		if g.Significant(threshold) {
			out = append(out, g)
		}
	}
	return out
}

// selfAverages indexes the client's own scores by week.
func selfAverages(reflections []checkin.Reflection) accumulator {
	acc := make(accumulator)
	for _, r := range reflections {
		if r.Week <= checkin.BaselineWeek {
			continue
		}
		acc.add(r.Week, Effort, r.Effort)
		acc.add(r.Week, Performance, r.Performance)
	}
	return acc
}

// raterAverages indexes stakeholder scores by week. A zero stakeholderID
// takes every stakeholder.
func raterAverages(feedback []checkin.Feedback, stakeholderID int64) accumulator {
	acc := make(accumulator)
	for _, f := range feedback {
		if f.Week <= checkin.BaselineWeek {
			continue
		}
		if stakeholderID != 0 && f.StakeholderID != stakeholderID {
			continue
		}
		acc.add(f.Week, Effort, f.Effort)
		acc.add(f.Week, Performance, f.Performance)
	}
	return acc
}

func gapsForWeek(self, raters accumulator, week int) []PerceptionGap {
	var out []PerceptionGap
	for _, d := range Dimensions {
		s, r := self.mean(week, d), raters.mean(week, d)
		if s == nil || r == nil {
			continue
		}
		out = append(out, PerceptionGap{Dimension: d, SelfScore: *s, RaterAvg: *r, Gap: *s - *r})
	}
	return out
}

// WeeklyGaps compares self scores against the all-stakeholder average for
// one week. Dimensions missing on either side are left out.
func WeeklyGaps(reflections []checkin.Reflection, feedback []checkin.Feedback, week int) []PerceptionGap {
	return gapsForWeek(selfAverages(reflections), raterAverages(feedback, 0), week)
}

// StakeholderWeeklyGaps is WeeklyGaps restricted to one stakeholder.
func StakeholderWeeklyGaps(reflections []checkin.Reflection, feedback []checkin.Feedback, stakeholderID int64, week int) []PerceptionGap {
	return gapsForWeek(selfAverages(reflections), raterAverages(feedback, stakeholderID), week)
}

// GapPoint is one week where both self and rater scores exist.
type GapPoint struct {
	Week int
	Gap  float64
}

// PairedGaps returns, ascending by week, every week where self and the
// given stakeholder (0 = all) both scored dimension d.
func PairedGaps(reflections []checkin.Reflection, feedback []checkin.Feedback, stakeholderID int64, d Dimension) []GapPoint {
	self := selfAverages(reflections)
	raters := raterAverages(feedback, stakeholderID)
	var out []GapPoint
	for _, w := range raters.weeks() {
		s, r := self.mean(w, d), raters.mean(w, d)
		if s == nil || r == nil {
			continue
		}
		out = append(out, GapPoint{Week: w, Gap: *s - *r})
	}
	return out
}

// Trend classifies how a perception gap moves over time.
type Trend string

const (
	TrendWidening Trend = "widening"
	TrendClosing  Trend = "closing"
	TrendStable   Trend = "stable"
)

// GapTrend looks at the most recent window of paired gaps and averages the
// week-to-week change of |gap|. Nil with fewer than two points.
func GapTrend(points []GapPoint, th Thresholds) *Trend {
	if len(points) < 2 {
		return nil
	}
	sorted := append([]GapPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Week < sorted[j].Week })
	if len(sorted) > th.GapTrendWindow {
		sorted = sorted[len(sorted)-th.GapTrendWindow:]
	}
	deltas := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		deltas = append(deltas, math.Abs(sorted[i].Gap)-math.Abs(sorted[i-1].Gap))
	}
	avg := *mean(deltas)

	trend := TrendStable
	switch {
	case avg > th.GapTrendDelta:
		trend = TrendWidening
	case avg < -th.GapTrendDelta:
		trend = TrendClosing
	}
	return &trend
}

// StakeholderTrend is the per-stakeholder scorecard entry.
type StakeholderTrend struct {
	StakeholderID       int64
	EffortGapTrend      *Trend
	PerformanceGapTrend *Trend
}

// StakeholderTrends classifies the gap trend of every stakeholder on both
// dimensions, in stakeholder order.
func StakeholderTrends(stakeholders []checkin.Stakeholder, reflections []checkin.Reflection, feedback []checkin.Feedback, th Thresholds) []StakeholderTrend {
	out := make([]StakeholderTrend, 0, len(stakeholders))
	for _, s := range stakeholders {
		out = append(out, StakeholderTrend{
			StakeholderID:       s.ID,
			EffortGapTrend:      GapTrend(PairedGaps(reflections, feedback, s.ID, Effort), th),
			PerformanceGapTrend: GapTrend(PairedGaps(reflections, feedback, s.ID, Performance), th),
		})
	}
	return out
}

// MisalignedWeeks counts weeks in [from, to] where any dimension's
// all-stakeholder gap exceeds th.AlignmentGap.
func MisalignedWeeks(reflections []checkin.Reflection, feedback []checkin.Feedback, from, to int, th Thresholds) int {
	self := selfAverages(reflections)
	raters := raterAverages(feedback, 0)
	count := 0
	for w := from; w <= to; w++ {
		for _, g := range gapsForWeek(self, raters, w) {
			if math.Abs(g.Gap) > th.AlignmentGap {
				count++
				break
			}
		}
	}
	return count
}
