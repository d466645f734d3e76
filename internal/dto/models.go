package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryOptions struct {
	Limit  uint32
	Cursor *string
	Sort   *string
}

type ListResponse[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// SubmitMemberInput is the access request form. An ID turns the submission into an update.
type SubmitMemberInput struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Phone     string     `json:"phone" validate:"required,max=40"`
	Email     string     `json:"email" validate:"required,email"`
	DeviceID  string     `json:"device_id,omitempty" validate:"max=200"`
	UserID    string     `json:"user_id,omitempty" validate:"max=120"`
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

type SearchInput struct {
	LastName string
	Email    string
}

type SearchResult struct {
	Mode       string   `json:"mode"`
	Items      []Member `json:"items"`
	NextCursor *string  `json:"next_cursor,omitempty"`
}

type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=200"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User             *AuthUser `json:"user"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type AuthUser struct {
	Email    string   `json:"email"`
	Name     string   `json:"name,omitempty"`
	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"is_admin"`
}

type SendEmailInput struct {
	To       string         `json:"to" validate:"required,email"`
	Subject  string         `json:"subject" validate:"required,max=200"`
	Template string         `json:"template,omitempty" validate:"omitempty,oneof=access_request email_verification generic"`
	Body     string         `json:"body,omitempty" validate:"required_without=Template"`
	Data     map[string]any `json:"data,omitempty"`
}

type VerificationResponse struct {
	MemberID  uuid.UUID `json:"member_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}
