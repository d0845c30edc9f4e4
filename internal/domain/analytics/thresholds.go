// Package analytics derives behavioral signals from a cycle's weekly scores:
// stability, trajectory, stakeholder alignment and self/rater perception gaps.
//
// Every function here is pure. Missing or sparse data is reported as a nil
// result, never as zero, so callers can tell "insufficient data" apart from
// a genuine score of 0.
package analytics

import (
	"errors"
	"fmt"
)

// Thresholds holds the tuned scale constants. They are product calibration
// values, not derived ones; DefaultThresholds mirrors the shipped behavior.
type Thresholds struct {
	// StabilityWindow is how many recent weeks feed the stability score.
	StabilityWindow int `yaml:"stability_window"`
	// StabilityScale is the penalty per point of weekly standard deviation.
	StabilityScale float64 `yaml:"stability_scale"`
	// TrajectoryWindow is how many recent weeks feed the trend fit.
	TrajectoryWindow int `yaml:"trajectory_window"`
	// TrajectoryScale converts slope (points per week) into the score.
	TrajectoryScale float64 `yaml:"trajectory_scale"`
	// SignificantGap is the inclusive |self - rater| cut-off for a flagged gap.
	SignificantGap float64 `yaml:"significant_gap"`
	// AlignmentGap is the exclusive |self - rater| cut-off for a misaligned week.
	AlignmentGap float64 `yaml:"alignment_gap"`
	// GapTrendWindow is how many recent paired weeks classify a gap trend.
	GapTrendWindow int `yaml:"gap_trend_window"`
	// GapTrendDelta is the mean |gap| change per week separating widening/closing from stable.
	GapTrendDelta float64 `yaml:"gap_trend_delta"`
}

// DefaultThresholds returns the production calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StabilityWindow:  4,
		StabilityScale:   10,
		TrajectoryWindow: 4,
		TrajectoryScale:  25,
		SignificantGap:   2,
		AlignmentGap:     1.5,
		GapTrendWindow:   3,
		GapTrendDelta:    0.5,
	}
}

var ErrInvalidThresholds = errors.New("invalid analytics thresholds")

// Validate rejects values that would make the scores meaningless.
func (t Thresholds) Validate() error {
	switch {
	case t.StabilityWindow < 2:
		return fmt.Errorf("%w: stability_window must be >= 2, got %d", ErrInvalidThresholds, t.StabilityWindow)
	case t.TrajectoryWindow < 2:
		return fmt.Errorf("%w: trajectory_window must be >= 2, got %d", ErrInvalidThresholds, t.TrajectoryWindow)
	case t.GapTrendWindow < 2:
		return fmt.Errorf("%w: gap_trend_window must be >= 2, got %d", ErrInvalidThresholds, t.GapTrendWindow)
	case t.StabilityScale <= 0 || t.TrajectoryScale <= 0:
		return fmt.Errorf("%w: scales must be positive", ErrInvalidThresholds)
	case t.SignificantGap <= 0 || t.AlignmentGap <= 0 || t.GapTrendDelta <= 0:
		return fmt.Errorf("%w: gap thresholds must be positive", ErrInvalidThresholds)
	}
	return nil
}
