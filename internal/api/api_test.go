package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestCatalogEndpoints(t *testing.T) {
	a := SetupTestRouter(t)
	lunch := testhelpers.CreateTag(t, a.db, "lunch")
	testhelpers.CreateTag(t, a.db, "breakfast")
	testhelpers.CreateIngredient(t, a.db, "cane sugar", "g")
	sugar := testhelpers.CreateIngredient(t, a.db, "sugar", "g")
	testhelpers.CreateIngredient(t, a.db, "salt", "g")

	w := a.PerformRequestWithToken(http.MethodGet, "/api/tags/", nil, "")
	requireStatus(t, w, http.StatusOK)
	var tags []TagResponse
	decode(t, w, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "breakfast", tags[0].Slug)
	require.NotNil(t, tags[0].Color)

	w = a.PerformRequestWithToken(http.MethodGet, fmt.Sprintf("/api/tags/%d/", lunch.ID), nil, "")
	requireStatus(t, w, http.StatusOK)
	var tag TagResponse
	decode(t, w, &tag)
	assert.Equal(t, "lunch", tag.Name)

	w = a.PerformRequestWithToken(http.MethodGet, "/api/ingredients/?name=sug", nil, "")
	requireStatus(t, w, http.StatusOK)
	var ingredients []IngredientResponse
	decode(t, w, &ingredients)
	require.Len(t, ingredients, 2)
	assert.Equal(t, sugar.ID, ingredients[0].ID)
	assert.Equal(t, "cane sugar", ingredients[1].Name)

	w = a.PerformRequestWithToken(http.MethodGet, fmt.Sprintf("/api/ingredients/%d/", sugar.ID), nil, "")
	requireStatus(t, w, http.StatusOK)
	var ingredient IngredientResponse
	decode(t, w, &ingredient)
	assert.Equal(t, IngredientResponse{ID: sugar.ID, Name: "sugar", MeasurementUnit: "g"}, ingredient)

	assert.Equal(t, http.StatusNotFound, a.PerformRequestWithToken(http.MethodGet, "/api/tags/999/", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, a.PerformRequestWithToken(http.MethodGet, "/api/ingredients/x/", nil, "").Code)
}

func TestCatalogIsReadOnly(t *testing.T) {
	a := SetupTestRouter(t)
	_, token := a.CreateTestUserAndToken(t, "chef")

	w := a.PerformRequestWithToken(http.MethodPost, "/api/tags/", map[string]string{"name": "x", "slug": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
