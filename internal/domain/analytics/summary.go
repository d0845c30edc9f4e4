package analytics

import (
	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// Summary is the headline numbers shown per client.
type Summary struct {
	StabilityScore  *int
	TrajectoryScore *int
	AlignmentRatio  *float64
}

// Summarize computes the headline numbers for the given current week.
func Summarize(c cycle.Cycle, week int, reflections []checkin.Reflection, feedback []checkin.Feedback, stakeholders []checkin.Stakeholder, th Thresholds) Summary {
	aggs := BuildWeeklyAggregates(reflections, feedback)
	return Summary{
		StabilityScore:  StabilityScore(aggs, th),
		TrajectoryScore: TrajectoryScore(aggs, th),
		AlignmentRatio:  AlignmentRatio(stakeholders, feedback, week, c.StakeholderCadence),
	}
}
