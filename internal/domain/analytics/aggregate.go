package analytics

import (
	"math"
	"sort"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
)

// Dimension is one rated axis.
type Dimension string

const (
	Effort      Dimension = "effort"
	Performance Dimension = "performance"
)

// Dimensions lists the tracked axes in output order.
var Dimensions = []Dimension{Effort, Performance}

// WeeklyAggregate is the mean of all scores recorded for one week, self and
// stakeholder alike. A nil average means nobody rated that dimension.
type WeeklyAggregate struct {
	Week           int
	EffortAvg      *float64
	PerformanceAvg *float64
}

// Value returns the average for d.
func (a WeeklyAggregate) Value(d Dimension) *float64 {
	if d == Performance {
		return a.PerformanceAvg
	}
	return a.EffortAvg
}

// Combined averages whichever dimensions are present.
func (a WeeklyAggregate) Combined() *float64 {
	var vals []float64
	for _, d := range Dimensions {
		if v := a.Value(d); v != nil {
			vals = append(vals, *v)
		}
	}
	return mean(vals)
}

// accumulator collects scores per week and dimension.
type accumulator map[int]map[Dimension][]float64

func (acc accumulator) add(week int, d Dimension, score *int) {
	if score == nil {
		return
	}
	byDim, ok := acc[week]
	if !ok {
		byDim = make(map[Dimension][]float64)
		acc[week] = byDim
	}
	byDim[d] = append(byDim[d], float64(*score))
}

func (acc accumulator) weeks() []int {
	weeks := make([]int, 0, len(acc))
	for w := range acc {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

func (acc accumulator) mean(week int, d Dimension) *float64 {
	return mean(acc[week][d])
}

// BuildWeeklyAggregates averages self and stakeholder scores per week,
// ascending by week. The baseline week is not part of the series.
func BuildWeeklyAggregates(reflections []checkin.Reflection, feedback []checkin.Feedback) []WeeklyAggregate {
	acc := make(accumulator)
	for _, r := range reflections {
		if r.Week <= checkin.BaselineWeek {
			continue
		}
		acc.add(r.Week, Effort, r.Effort)
		acc.add(r.Week, Performance, r.Performance)
	}
	for _, f := range feedback {
		if f.Week <= checkin.BaselineWeek {
			continue
		}
		acc.add(f.Week, Effort, f.Effort)
		acc.add(f.Week, Performance, f.Performance)
	}

	out := make([]WeeklyAggregate, 0, len(acc))
	for _, w := range acc.weeks() {
		agg := WeeklyAggregate{Week: w, EffortAvg: acc.mean(w, Effort), PerformanceAvg: acc.mean(w, Performance)}
		if agg.EffortAvg == nil && agg.PerformanceAvg == nil {
			continue
		}
		out = append(out, agg)
	}
	return out
}

// mean returns nil for an empty slice instead of NaN.
func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

// populationStdDev returns nil with fewer than two values.
func populationStdDev(vals []float64) *float64 {
	if len(vals) < 2 {
		return nil
	}
	m := *mean(vals)
	varianceSum := 0.0
	for _, v := range vals {
		diff := v - m
		varianceSum += diff * diff
	}
	sd := math.Sqrt(varianceSum / float64(len(vals)))
	return &sd
}

// roundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, so -12.5 becomes -12.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floatPtr(v float64) *float64 { return &v }
