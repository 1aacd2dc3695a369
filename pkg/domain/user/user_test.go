package user_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pesabank/pesabank/pkg/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := user.NewUser("Ada", "Lovelace", "ada@example.com", "+15550001111", "4242")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "4242", u.HashedPIN)
	assert.True(t, u.CheckPIN("4242"))
	assert.False(t, u.CheckPIN("9999"))
}

func TestNewUser_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		firstName string
		email     string
		pin       string
	}{
		{"empty first name", "", "ada@example.com", "4242"},
		{"empty email", "Ada", "", "4242"},
		{"short PIN", "Ada", "ada@example.com", "123"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := user.NewUser(tt.firstName, "Lovelace", tt.email, "", tt.pin)
			assert.Error(t, err)
		})
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	u, err := user.NewUser("Ada", "Lovelace", "ada@example.com", "", "4242")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.FullName())

	u.LastName = ""
	assert.Equal(t, "Ada", u.FullName())
}
