package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

func TestListTags(t *testing.T) {
	env := newTestEnv(t)
	tags, _ := env.seedCatalog(t)

	w := env.request(t, "GET", "/api/tags", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp []models.Tag
	decodeJSON(t, w, &resp)
	assert.Len(t, resp, len(tags))
}

func TestGetTag(t *testing.T) {
	env := newTestEnv(t)
	tags, _ := env.seedCatalog(t)

	w := env.request(t, "GET", fmt.Sprintf("/api/tags/%d", tags[0].ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.Tag
	decodeJSON(t, w, &resp)
	assert.Equal(t, tags[0].Slug, resp.Slug)
	assert.Equal(t, tags[0].Color, resp.Color)

	w = env.request(t, "GET", "/api/tags/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListIngredients(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog(t)

	w := env.request(t, "GET", "/api/ingredients", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp []models.Ingredient
	decodeJSON(t, w, &resp)
	assert.Len(t, resp, 3)

	// Name search is a prefix match
	w = env.request(t, "GET", "/api/ingredients?name=fl", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "flour", resp[0].Name)

	// A non-prefix substring does not match
	w = env.request(t, "GET", "/api/ingredients?name=lour", "", nil)
	decodeJSON(t, w, &resp)
	assert.Empty(t, resp)
}

func TestGetIngredient(t *testing.T) {
	env := newTestEnv(t)
	_, ingredients := env.seedCatalog(t)

	w := env.request(t, "GET", fmt.Sprintf("/api/ingredients/%d", ingredients[0].ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.Ingredient
	decodeJSON(t, w, &resp)
	assert.Equal(t, "flour", resp.Name)
	assert.Equal(t, "g", resp.MeasurementUnit)

	w = env.request(t, "GET", "/api/ingredients/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
