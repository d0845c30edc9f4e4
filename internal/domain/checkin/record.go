package checkin

import (
	"time"
)

// BaselineWeek holds the pre-cycle reflection. It never takes part in
// scheduling or streaks.
const BaselineWeek = 0

// Reflection is one self-rating submitted by the client. Scores are 0-10
// and nil when the client skipped that dimension.
// Unique per (CycleID, Week, Slot, GoalID); re-submission overwrites.
type Reflection struct {
	ID          int64
	CycleID     int64
	GoalID      int64
	Week        int
	Slot        SlotType
	Effort      *int
	Performance *int
	SubmittedAt time.Time
}

// Feedback is one stakeholder rating attached to a single reflection.
// Week is copied from the linked reflection.
type Feedback struct {
	ID            int64
	StakeholderID int64
	ReflectionID  int64
	Week          int
	Effort        *int
	Performance   *int
	Comment       string
	SubmittedAt   time.Time
}

// Stakeholder is an external rater attached to a cycle.
type Stakeholder struct {
	ID   int64
	Name string
}

// Score is a convenience for building optional scores.
func Score(v int) *int {
	return &v
}
