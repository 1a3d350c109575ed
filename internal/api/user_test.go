package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/api/users", "", map[string]interface{}{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp UserResponse
	decodeJSON(t, w, &resp)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.False(t, resp.IsSubscribed)

	// The password hash never leaks into the response
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/users", "", map[string]interface{}{
		"email":      "alice@example.com",
		"username":   "alice2",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	// Missing email
	w := env.request(t, "POST", "/api/users", "", map[string]interface{}{
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Password too short
	w = env.request(t, "POST", "/api/users", "", map[string]interface{}{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	w := env.request(t, "GET", "/api/users", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int64          `json:"count"`
		Results []UserResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Count)
	assert.Len(t, page.Results, 2)
}

func TestGetUserProfile(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	// Anonymous view
	w := env.request(t, "GET", fmt.Sprintf("/api/users/%d", alice.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, alice.ID, resp.ID)
	assert.False(t, resp.IsSubscribed)

	// After subscribing, the viewer-relative flag flips
	w = env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "GET", fmt.Sprintf("/api/users/%d", alice.ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	assert.True(t, resp.IsSubscribed)
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "GET", "/api/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A malformed id behaves like a missing user
	w = env.request(t, "GET", "/api/users/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")

	w := env.request(t, "GET", "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, alice.ID, resp.ID)
	assert.Equal(t, "alice", resp.Username)

	// Anonymous access is rejected
	w = env.request(t, "GET", "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	w := env.request(t, "PATCH", "/api/users/me", token, map[string]interface{}{
		"first_name": "Alicia",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Alicia", resp.FirstName)
	// Untouched fields survive a partial update
	assert.Equal(t, "alice", resp.Username)
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")
	env.createUser(t, "bob")

	w := env.request(t, "PATCH", "/api/users/me", token, map[string]interface{}{
		"username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/users/set_password", token, map[string]interface{}{
		"new_password":     "newpassword456",
		"current_password": "password123",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Old password no longer works, new one does
	w = env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, "POST", "/api/auth/token/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "newpassword456",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSetPasswordWrongCurrent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	w := env.request(t, "POST", "/api/users/set_password", token, map[string]interface{}{
		"new_password":     "newpassword456",
		"current_password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribe(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	env.createRecipe(t, alice.ID, "Pancakes", nil, nil)
	env.createRecipe(t, alice.ID, "Waffles", nil, nil)

	w := env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SubscriptionResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, alice.ID, resp.ID)
	assert.True(t, resp.IsSubscribed)
	assert.Equal(t, int64(2), resp.RecipesCount)
	assert.Len(t, resp.Recipes, 2)
}

func TestSubscribeTwice(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	w := env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "bob")

	w := env.request(t, "POST", "/api/users/9999/subscribe", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnsubscribe(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	w := env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "DELETE", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Removing an absent subscription is a not-found error
	w = env.request(t, "DELETE", fmt.Sprintf("/api/users/%d/subscribe", alice.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionsList(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.createUser(t, "alice")
	carol, _ := env.createUser(t, "carol")
	_, bobToken := env.createUser(t, "bob")

	for i := 0; i < 3; i++ {
		env.createRecipe(t, alice.ID, fmt.Sprintf("Recipe %d", i), nil, nil)
	}

	for _, author := range []models.User{alice, carol} {
		w := env.request(t, "POST", fmt.Sprintf("/api/users/%d/subscribe", author.ID), bobToken, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.request(t, "GET", "/api/users/subscriptions?recipes_limit=2", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int64                  `json:"count"`
		Results []SubscriptionResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 2)

	// Recipes are capped by recipes_limit but the count is not
	assert.Equal(t, alice.ID, page.Results[0].ID)
	assert.Equal(t, int64(3), page.Results[0].RecipesCount)
	assert.Len(t, page.Results[0].Recipes, 2)
	assert.Equal(t, carol.ID, page.Results[1].ID)
	assert.Empty(t, page.Results[1].Recipes)
}

func TestUserListPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 8; i++ {
		env.createUser(t, fmt.Sprintf("user%d", i))
	}

	w := env.request(t, "GET", "/api/users?limit=3&page=2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var page PageResponse
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(8), page.Count)
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Next, "page=3")
	assert.Contains(t, *page.Previous, "page=1")
}
