package token

import (
	"time"
)

type JWTType string

type Provider string

const (
	AccessTokenExpirationTime          = time.Minute * 15    // 15 minutes
	RefreshTokenExpirationTime         = time.Hour * 24 * 7  // 7 days
	RefreshTokenExpirationTimeForAdmin = time.Hour * 24 * 14 // 14 days

	RefreshTokenName = "refresh_token"
	AccessTokenName  = "access_token"

	JWTTypeAccess  JWTType = "access"
	JWTTypeRefresh JWTType = "refresh"

	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"

	RoleMember = "member"
	RoleAdmin  = "admin"
)

type CreatetokenParams struct {
	Email    string
	Name     string
	Provider Provider
	Roles    []string
	JwtType  JWTType
	Duration time.Duration
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshTokenID   string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type TokenPairParams struct {
	Email    string
	Name     string
	Provider Provider
	Roles    []string
}
