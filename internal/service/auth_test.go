package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	user, err := auth.Register(RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Cooper",
		Password:  "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, err := auth.Login("alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	in := RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Cooper",
		Password:  "password123",
	}
	_, err := auth.Register(in)
	require.NoError(t, err)

	_, err = auth.Register(in)
	assert.True(t, IsValidationError(err))

	// Same username under a different email still conflicts
	in.Email = "alice2@example.com"
	_, err = auth.Register(in)
	assert.True(t, IsValidationError(err))
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	_, err := auth.Register(RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Cooper",
		Password:  "password123",
	})
	require.NoError(t, err)

	_, err = auth.Login("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetPassword(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")

	user, err := auth.Register(RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Cooper",
		Password:  "password123",
	})
	require.NoError(t, err)

	err = auth.SetPassword(user.ID, "wrong", "newpassword456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.SetPassword(user.ID, "password123", "newpassword456"))

	_, err = auth.Login("alice@example.com", "newpassword456")
	assert.NoError(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, "test-secret")
	other := NewAuthService(db, "other-secret")

	token, err := auth.GenerateToken(1)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
