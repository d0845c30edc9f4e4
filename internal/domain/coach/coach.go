package coach

import (
	"database/sql"
	"time"
)

// Coach is a practitioner who receives client digests over Telegram.
type Coach struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString // optional
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name when the latter is set.
func (c *Coach) FullName() string {
	if c.LastName.Valid && c.LastName.String != "" {
		return c.FirstName + " " + c.LastName.String
	}
	return c.FirstName
}
