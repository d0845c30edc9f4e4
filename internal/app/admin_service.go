package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
)

var (
	ErrAdminNotAuthorized   = errors.New("performing user is not authorized as an admin")
	ErrCoachAlreadyExists   = errors.New("coach with this Telegram ID already exists")
	ErrCoachAlreadyInactive = errors.New("coach is already inactive")
)

// AdminService manages the coach roster. Only the configured admin may use it.
type AdminService struct {
	coachRepo       coach.Repository
	adminTelegramID int64
}

func NewAdminService(cr coach.Repository, adminID int64) *AdminService {
	return &AdminService{
		coachRepo:       cr,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether the Telegram user is the configured admin.
func (s *AdminService) IsAdmin(telegramID int64) bool {
	return telegramID == s.adminTelegramID
}

// AddCoach registers a coach, or reactivates one that was removed earlier.
func (s *AdminService) AddCoach(ctx context.Context, performingAdminID, telegramID int64, firstName, lastName string) (*coach.Coach, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}

	existing, err := s.coachRepo.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil && existing.IsActive:
		return nil, ErrCoachAlreadyExists
	case err == nil:
		existing.IsActive = true
		existing.FirstName = firstName
		existing.LastName = nullString(lastName)
		if err := s.coachRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate coach: %w", err)
		}
		return existing, nil
	case !errors.Is(err, idb.ErrCoachNotFound):
		return nil, fmt.Errorf("failed to check existing coach: %w", err)
	}

	c := &coach.Coach{
		TelegramID: telegramID,
		FirstName:  firstName,
		LastName:   nullString(lastName),
		IsActive:   true,
	}
	if err := s.coachRepo.Create(ctx, c); err != nil {
		if errors.Is(err, idb.ErrDuplicateTelegramID) {
			return nil, ErrCoachAlreadyExists
		}
		return nil, fmt.Errorf("failed to create coach: %w", err)
	}
	return c, nil
}

// RemoveCoach deactivates a coach. Their clients drop out of future digests.
func (s *AdminService) RemoveCoach(ctx context.Context, performingAdminID, telegramID int64) (*coach.Coach, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.coachRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, idb.ErrCoachNotFound) {
			return nil, idb.ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach by Telegram ID for removal: %w", err)
	}
	if !target.IsActive {
		return target, ErrCoachAlreadyInactive
	}

	target.IsActive = false
	if err := s.coachRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to deactivate coach: %w", err)
	}
	return target, nil
}

// ListCoaches returns every coach, active or not.
func (s *AdminService) ListCoaches(ctx context.Context, performingAdminID int64) ([]*coach.Coach, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	coaches, err := s.coachRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	return coaches, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
