package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/checkin"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coaching"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/cycle"
)

var ErrCycleNotFound = errors.New("cycle not found")

// PostgresSnapshotRepository reads client cycles and their records.
// Every snapshot comes from a single read-only repeatable-read transaction.
// Cycle dates are pinned to loc, the zone the engine schedules in.
type PostgresSnapshotRepository struct {
	db     *sql.DB
	loc    *time.Location
	logger *logrus.Entry
}

func NewPostgresSnapshotRepository(db *sql.DB, loc *time.Location, logger *logrus.Entry) *PostgresSnapshotRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresSnapshotRepository{db: db, loc: loc, logger: logger}
}

func (r *PostgresSnapshotRepository) LoadSnapshot(ctx context.Context, cycleID int64) (*coaching.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("error starting snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	snap := &coaching.Snapshot{}
	if err := tx.QueryRowContext(ctx, `SELECT NOW()`).Scan(&snap.TakenAt); err != nil {
		return nil, fmt.Errorf("error reading snapshot time: %w", err)
	}

	snap.Cycle, snap.ClientName, err = loadCycle(ctx, tx, cycleID)
	if err != nil {
		return nil, err
	}
	snap.Cycle = snap.Cycle.InLocation(r.loc)

	rows, err := loadReflections(ctx, tx, snap.Cycle)
	if err != nil {
		return nil, err
	}
	var skipped []reflectionRow
	snap.Reflections, skipped = resolveReflections(rows, snap.Cycle)
	for _, row := range skipped {
		r.logger.WithFields(logrus.Fields{
			"cycle_id":      cycleID,
			"reflection_id": row.ref.ID,
			"week":          row.ref.Week,
			"tag":           row.tag,
		}).Warn("Skipping reflection with unknown type")
	}
	if snap.Stakeholders, err = loadStakeholders(ctx, tx, cycleID); err != nil {
		return nil, err
	}
	if snap.Feedback, err = loadFeedback(ctx, tx, cycleID, snap.Stakeholders); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error closing snapshot transaction: %w", err)
	}
	return snap, nil
}

func loadCycle(ctx context.Context, tx *sql.Tx, cycleID int64) (cycle.Cycle, string, error) {
	query := `SELECT c.id, c.client_id, c.coach_id, c.goal_id, c.start_date, c.end_date,
                     c.check_in_frequency, c.stakeholder_cadence, c.created_at, cl.name
               FROM cycles c JOIN clients cl ON cl.id = c.client_id
               WHERE c.id = $1`

	var (
		c          cycle.Cycle
		freq       pq.StringArray
		stakeCad   string
		clientName string
	)
	err := tx.QueryRowContext(ctx, query, cycleID).Scan(
		&c.ID, &c.ClientID, &c.CoachID, &c.GoalID, &c.StartDate, &c.EndDate,
		&freq, &stakeCad, &c.CreatedAt, &clientName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cycle.Cycle{}, "", ErrCycleNotFound
		}
		return cycle.Cycle{}, "", fmt.Errorf("error getting cycle %d: %w", cycleID, err)
	}
	c.Cadence = cycle.ParseCadence(freq)
	c.StakeholderCadence = cycle.ParseStakeholderCadence(stakeCad)
	return c, clientName, nil
}

// reflectionRow is a scanned reflection whose type tag is not resolved yet.
type reflectionRow struct {
	ref checkin.Reflection
	tag string
}

// loadReflections keeps only the cycle's own goal.
func loadReflections(ctx context.Context, tx *sql.Tx, c cycle.Cycle) ([]reflectionRow, error) {
	query := `SELECT id, goal_id, week_number, reflection_type, effort_score, performance_score, submitted_at
               FROM reflections
               WHERE cycle_id = $1 AND goal_id = $2
               ORDER BY week_number, submitted_at, id`

	rows, err := tx.QueryContext(ctx, query, c.ID, c.GoalID)
	if err != nil {
		return nil, fmt.Errorf("error listing reflections: %w", err)
	}
	defer rows.Close()

	out := make([]reflectionRow, 0)
	for rows.Next() {
		var (
			row       reflectionRow
			eff, perf sql.NullInt64
		)
		if err := rows.Scan(&row.ref.ID, &row.ref.GoalID, &row.ref.Week, &row.tag, &eff, &perf, &row.ref.SubmittedAt); err != nil {
			return nil, fmt.Errorf("error scanning reflection: %w", err)
		}
		row.ref.CycleID = c.ID
		row.ref.Effort = nullScore(eff)
		row.ref.Performance = nullScore(perf)
		out = append(out, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reflections: %w", err)
	}
	return out, nil
}

// resolveReflections places each row on the cycle's cadence. Rows whose tag
// matches no slot are returned separately so the caller can report them.
func resolveReflections(rows []reflectionRow, c cycle.Cycle) ([]checkin.Reflection, []reflectionRow) {
	reflections := make([]checkin.Reflection, 0, len(rows))
	var skipped []reflectionRow
	for _, row := range rows {
		slot, err := checkin.ParseSlotType(row.tag, c.Cadence)
		if err != nil {
			skipped = append(skipped, row)
			continue
		}
		ref := row.ref
		ref.Slot = slot
		reflections = append(reflections, ref)
	}
	return reflections, skipped
}

func loadStakeholders(ctx context.Context, tx *sql.Tx, cycleID int64) ([]checkin.Stakeholder, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM stakeholders WHERE cycle_id = $1 ORDER BY id`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing stakeholders: %w", err)
	}
	defer rows.Close()

	stakeholders := make([]checkin.Stakeholder, 0)
	for rows.Next() {
		var s checkin.Stakeholder
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning stakeholder: %w", err)
		}
		stakeholders = append(stakeholders, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stakeholders: %w", err)
	}
	return stakeholders, nil
}

// loadFeedback reads ratings left by the cycle's stakeholders. Week comes from
// the linked reflection.
func loadFeedback(ctx context.Context, tx *sql.Tx, cycleID int64, stakeholders []checkin.Stakeholder) ([]checkin.Feedback, error) {
	if len(stakeholders) == 0 {
		return []checkin.Feedback{}, nil
	}
	ids := make([]int64, len(stakeholders))
	for i, s := range stakeholders {
		ids[i] = s.ID
	}

	query := `SELECT f.id, f.stakeholder_id, f.reflection_id, r.week_number,
                     f.effort_score, f.performance_score, f.comment, f.submitted_at
               FROM stakeholder_feedback f
               JOIN reflections r ON r.id = f.reflection_id
               WHERE r.cycle_id = $1 AND f.stakeholder_id = ANY($2)
               ORDER BY r.week_number, f.submitted_at, f.id`

	rows, err := tx.QueryContext(ctx, query, cycleID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error listing stakeholder feedback: %w", err)
	}
	defer rows.Close()

	feedback := make([]checkin.Feedback, 0)
	for rows.Next() {
		var (
			fb        checkin.Feedback
			eff, perf sql.NullInt64
		)
		if err := rows.Scan(&fb.ID, &fb.StakeholderID, &fb.ReflectionID, &fb.Week, &eff, &perf, &fb.Comment, &fb.SubmittedAt); err != nil {
			return nil, fmt.Errorf("error scanning stakeholder feedback: %w", err)
		}
		fb.Effort = nullScore(eff)
		fb.Performance = nullScore(perf)
		feedback = append(feedback, fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stakeholder feedback: %w", err)
	}
	return feedback, nil
}

func (r *PostgresSnapshotRepository) ListActiveCycles(ctx context.Context, coachID int64, now time.Time) ([]coaching.ActiveCycle, error) {
	query := `SELECT c.id, c.client_id, cl.name, c.start_date
               FROM cycles c JOIN clients cl ON cl.id = c.client_id
               WHERE c.coach_id = $1 AND c.start_date <= $2::date
                 AND (c.end_date IS NULL OR c.end_date >= $2::date)
               ORDER BY cl.name, c.id`

	rows, err := r.db.QueryContext(ctx, query, coachID, now.In(r.loc).Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("error listing active cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]coaching.ActiveCycle, 0)
	for rows.Next() {
		var ac coaching.ActiveCycle
		if err := rows.Scan(&ac.CycleID, &ac.ClientID, &ac.ClientName, &ac.StartDate); err != nil {
			return nil, fmt.Errorf("error scanning active cycle: %w", err)
		}
		ac.StartDate = cycle.DateIn(ac.StartDate, r.loc)
		cycles = append(cycles, ac)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active cycles: %w", err)
	}
	return cycles, nil
}

func nullScore(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return checkin.Score(int(v.Int64))
}
