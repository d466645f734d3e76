package token

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type UserClaims struct {
	Email    string   `json:"email"`
	Name     string   `json:"name,omitempty"`
	Provider Provider `json:"provider"`
	Roles    []string `json:"roles"`
	Type     JWTType  `json:"typ"`
	jwt.RegisteredClaims
}

func (c *UserClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

func newUserClaims(params *CreatetokenParams, now time.Time) (*UserClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	return &UserClaims{
		Email:    params.Email,
		Name:     params.Name,
		Provider: params.Provider,
		Roles:    params.Roles,
		Type:     params.JwtType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   params.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(params.Duration)),
		},
	}, nil
}
