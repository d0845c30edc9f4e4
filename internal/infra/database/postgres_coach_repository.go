package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
)

var (
	ErrCoachNotFound       = errors.New("coach not found")
	ErrDuplicateTelegramID = errors.New("coach with this Telegram ID already exists")
)

const uniqueViolation = "23505"

const coachColumns = `id, telegram_id, first_name, last_name, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoach(row rowScanner) (*coach.Coach, error) {
	c := &coach.Coach{}
	if err := row.Scan(&c.ID, &c.TelegramID, &c.FirstName, &c.LastName, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

type PostgresCoachRepository struct {
	db *sql.DB
}

func NewPostgresCoachRepository(db *sql.DB) *PostgresCoachRepository {
	return &PostgresCoachRepository{db: db}
}

func (r *PostgresCoachRepository) Create(ctx context.Context, c *coach.Coach) error {
	query := `INSERT INTO coaches (telegram_id, first_name, last_name, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.TelegramID, c.FirstName, c.LastName, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating coach: %w", err)
	}
	return nil
}

func (r *PostgresCoachRepository) GetByID(ctx context.Context, id int64) (*coach.Coach, error) {
	c, err := scanCoach(r.db.QueryRowContext(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("error getting coach by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCoachRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*coach.Coach, error) {
	c, err := scanCoach(r.db.QueryRowContext(ctx, `SELECT `+coachColumns+` FROM coaches WHERE telegram_id = $1`, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("error getting coach by Telegram ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCoachRepository) Update(ctx context.Context, c *coach.Coach) error {
	query := `UPDATE coaches
               SET first_name = $1, last_name = $2, is_active = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, c.FirstName, c.LastName, c.IsActive, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCoachNotFound
		}
		return fmt.Errorf("error updating coach: %w", err)
	}
	return nil
}

func (r *PostgresCoachRepository) ListActive(ctx context.Context) ([]*coach.Coach, error) {
	return r.list(ctx, `SELECT `+coachColumns+` FROM coaches WHERE is_active = TRUE ORDER BY first_name, last_name`)
}

func (r *PostgresCoachRepository) ListAll(ctx context.Context) ([]*coach.Coach, error) {
	return r.list(ctx, `SELECT `+coachColumns+` FROM coaches ORDER BY id`)
}

func (r *PostgresCoachRepository) list(ctx context.Context, query string) ([]*coach.Coach, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing coaches: %w", err)
	}
	defer rows.Close()

	coaches := make([]*coach.Coach, 0)
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning coach: %w", err)
		}
		coaches = append(coaches, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coaches: %w", err)
	}
	return coaches, nil
}
