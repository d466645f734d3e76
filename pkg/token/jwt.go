package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrWrongTokenType = errors.New("wrong token type")

type Jwt struct {
	SecretKey string
	now       func() time.Time
}

func NewJwt(secretKey string) *Jwt {
	return &Jwt{
		SecretKey: secretKey,
		now:       time.Now,
	}
}

func (j *Jwt) createToken(params *CreatetokenParams) (string, *UserClaims, error) {
	claims, err := newUserClaims(params, j.now())
	if err != nil {
		return "", nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.SecretKey))
	if err != nil {
		return "", nil, err
	}

	return tokenString, claims, nil
}

// ValidateToken parses the token and checks it is of the expected type.
func (j *Jwt) ValidateToken(tokenString string, expected JWTType) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid token signing method")
		}
		return []byte(j.SecretKey), nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

func (j *Jwt) GenerateTokenPair(params *TokenPairParams) (*TokenPair, error) {
	accessToken, accessClaims, err := j.createToken(&CreatetokenParams{
		Email:    params.Email,
		Name:     params.Name,
		Provider: params.Provider,
		Roles:    params.Roles,
		JwtType:  JWTTypeAccess,
		Duration: AccessTokenExpirationTime,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, refreshClaims, err := j.createToken(&CreatetokenParams{
		Email:    params.Email,
		Name:     params.Name,
		Provider: params.Provider,
		Roles:    params.Roles,
		JwtType:  JWTTypeRefresh,
		Duration: RefreshExpiry(params.Roles),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshTokenID:   refreshClaims.ID,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// RefreshExpiry returns the refresh token lifetime for the given roles.
func RefreshExpiry(roles []string) time.Duration {
	for _, role := range roles {
		if role == RoleAdmin {
			return RefreshTokenExpirationTimeForAdmin
		}
	}
	return RefreshTokenExpirationTime
}
