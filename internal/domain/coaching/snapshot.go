// Package coaching defines the read model the analytics engine consumes:
// one coherent snapshot of a client's cycle.
package coaching

import (
	"context"
	"time"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

// Snapshot holds every record of one cycle as read at a single point in time.
// Comparing self scores and stakeholder scores from different reads would
// mix stale and fresh data, so callers must build it from one read.
type Snapshot struct {
	Cycle        cycle.Cycle
	ClientName   string
	Reflections  []checkin.Reflection
	Feedback     []checkin.Feedback
	Stakeholders []checkin.Stakeholder
	TakenAt      time.Time
}

// ActiveCycle is a lightweight listing entry for a coach's roster.
type ActiveCycle struct {
	CycleID    int64
	ClientID   int64
	ClientName string
	StartDate  time.Time
}

// SnapshotRepository reads cycle snapshots from the record store.
type SnapshotRepository interface {
	// LoadSnapshot reads the cycle and all its records in one consistent read.
	LoadSnapshot(ctx context.Context, cycleID int64) (*Snapshot, error)
	// ListActiveCycles returns the cycles of a coach that have started and not
	// ended as of now.
	ListActiveCycles(ctx context.Context, coachID int64, now time.Time) ([]ActiveCycle, error)
}
