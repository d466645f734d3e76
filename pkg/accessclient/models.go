package accessclient

import (
	"time"

	"github.com/google/uuid"
)

// SaveMemberInput is the access request form. Set ID to update an existing request.
type SaveMemberInput struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	DeviceID  string     `json:"device_id,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
}

type Member struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	PictureURL       string     `json:"picture_url,omitempty"`
	EmailValidatedAt *time.Time `json:"email_validated_at,omitempty"`
	RequestedAt      time.Time  `json:"requested_at"`
	DeviceID         string     `json:"device_id,omitempty"`
	UserID           string     `json:"user_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SearchResult carries the matched requests and the search mode the server applied.
type SearchResult struct {
	Mode       string   `json:"mode"`
	Items      []Member `json:"items"`
	NextCursor *string  `json:"next_cursor,omitempty"`
}
