package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Member is one facility access request row.
type Member struct {
	ID               uuid.UUID      `json:"id"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Phone            string         `json:"phone"`
	Email            string         `json:"email"`
	Picture          sql.NullString `json:"picture"`
	EmailValidatedAt sql.NullTime   `json:"email_validated_at"`
	RequestedAt      time.Time      `json:"requested_at"`
	DeviceID         sql.NullString `json:"device_id"`
	UserID           string         `json:"user_id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (m *Member) sortValue(column string) time.Time {
	switch column {
	case "created_at":
		return m.CreatedAt
	case "updated_at":
		return m.UpdatedAt
	default:
		return m.RequestedAt
	}
}
