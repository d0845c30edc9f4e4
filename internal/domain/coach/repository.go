package coach

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Coach entities.
type Repository interface {
	Create(ctx context.Context, coach *Coach) error
	GetByID(ctx context.Context, id int64) (*Coach, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Coach, error)
	Update(ctx context.Context, coach *Coach) error // FirstName, LastName, IsActive
	ListActive(ctx context.Context) ([]*Coach, error)
	ListAll(ctx context.Context) ([]*Coach, error)
}
