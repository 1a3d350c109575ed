package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenLogin(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp TokenResponse
	decodeJSON(t, w, &resp)
	assert.NotEmpty(t, resp.AuthToken)

	// The issued token must be usable on a protected endpoint
	w = env.request(t, "GET", "/api/users/me", resp.AuthToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTokenLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenLoginBlockedUser(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.createUser(t, "alice")
	env.DB.Model(&user).Update("is_blocked", true)

	w := env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenLogout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTokenLogoutRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/auth/token/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpointRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "GET", "/api/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
