package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	j := NewJwt("test-secret")

	pair, err := j.GenerateTokenPair(&TokenPairParams{
		Email:    "ada@example.org",
		Name:     "Ada",
		Provider: ProviderGoogle,
		Roles:    []string{RoleMember, RoleAdmin},
	})
	require.NoError(t, err)

	access, err := j.ValidateToken(pair.AccessToken, JWTTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", access.Email)
	assert.Equal(t, ProviderGoogle, access.Provider)
	assert.True(t, access.HasRole(RoleAdmin))

	refresh, err := j.ValidateToken(pair.RefreshToken, JWTTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshTokenID, refresh.ID)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenExpirationTimeForAdmin), pair.RefreshExpiresAt, time.Minute)
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	j := NewJwt("test-secret")
	pair, err := j.GenerateTokenPair(&TokenPairParams{Email: "a@b.co", Roles: []string{RoleMember}})
	require.NoError(t, err)

	_, err = j.ValidateToken(pair.RefreshToken, JWTTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	pair, err := NewJwt("one").GenerateTokenPair(&TokenPairParams{Email: "a@b.co"})
	require.NoError(t, err)

	_, err = NewJwt("two").ValidateToken(pair.AccessToken, JWTTypeAccess)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	j := NewJwt("test-secret")
	j.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := j.GenerateTokenPair(&TokenPairParams{Email: "a@b.co"})
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.ValidateToken(pair.AccessToken, JWTTypeAccess)
	assert.Error(t, err)
}

func TestRefreshExpiry(t *testing.T) {
	assert.Equal(t, RefreshTokenExpirationTime, RefreshExpiry([]string{RoleMember}))
	assert.Equal(t, RefreshTokenExpirationTimeForAdmin, RefreshExpiry([]string{RoleMember, RoleAdmin}))
}
