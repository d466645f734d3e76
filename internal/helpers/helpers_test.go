package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUserID(t *testing.T) {
	tests := []struct {
		name     string
		lastName string
		phone    string
		want     string
	}{
		{"plain", "Smith", "555-010-1234", "smith1234"},
		{"accents and punctuation", "O'Brien-Núñez", "+1 (555) 010 9876", "obriennunez9876"},
		{"short phone", "Lee", "12", "lee12"},
		{"no digits", "Lee", "n/a", "lee"},
		{"spaces in name", "van der Berg", "5550100001", "vanderberg0001"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateUserID(tt.lastName, tt.phone))
		})
	}
}

func TestGenerateUserIDDeterministic(t *testing.T) {
	assert.Equal(t, GenerateUserID("Zoë", "555 0101"), GenerateUserID("Zoë", "555 0101"))
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
}
