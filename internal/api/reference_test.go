package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTags(t *testing.T) {
	env := newTestEnv(t)
	lunch := testhelpers.CreateTag(t, env.db, "lunch", 1)
	testhelpers.CreateTag(t, env.db, "supper", 2)

	for _, path := range []string{"/api/tags", "/api/tags/"} {
		w := env.do(http.MethodGet, path, "", nil)
		assertStatus(t, w, http.StatusOK)
		var tags []types.TagResponse
		decode(t, w, &tags)
		assert.Len(t, tags, 2)
	}

	w := env.do(http.MethodGet, fmt.Sprintf("/api/tags/%d/", lunch.ID), "", nil)
	assertStatus(t, w, http.StatusOK)
	var tag types.TagResponse
	decode(t, w, &tag)
	assert.Equal(t, "#000001", tag.Color)

	assertStatus(t, env.do(http.MethodGet, "/api/tags/9999/", "", nil), http.StatusNotFound)
}

func TestIngredientsSearch(t *testing.T) {
	env := newTestEnv(t)
	sugar := testhelpers.CreateIngredient(t, env.db, "Sugar", "g")
	testhelpers.CreateIngredient(t, env.db, "salt", "g")

	w := env.do(http.MethodGet, "/api/ingredients/?name=su", "", nil)
	assertStatus(t, w, http.StatusOK)
	var list []types.IngredientResponse
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, sugar.ID, list[0].ID)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/ingredients/%d", sugar.ID), "", nil)
	assertStatus(t, w, http.StatusOK)
	assertStatus(t, env.do(http.MethodGet, "/api/ingredients/9999", "", nil), http.StatusNotFound)
}
