package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/model"
)

func TestSetupSQLiteEnforcesForeignKeys(t *testing.T) {
	db := SetupSQLite(t)

	err := db.Create(&model.Favorite{UserID: 999, RecipeID: 999}).Error
	assert.Error(t, err)
}

func TestFixtures(t *testing.T) {
	db := SetupSQLite(t)

	author := CreateUser(t, db, "author")
	tag := CreateTag(t, db, "breakfast", 1)
	flour := CreateIngredient(t, db, "flour", "g")

	recipe := CreateRecipe(t, db, author, RecipeFixture{
		Tags:    []*model.Tag{tag},
		Amounts: map[*model.Ingredient]int{flour: 200},
	})
	require.NotZero(t, recipe.ID)

	assert.Equal(t, int64(1), CountRows(t, db, &model.RecipeTag{}, "recipe_id = ?", recipe.ID))
	assert.Equal(t, int64(1), CountRows(t, db, &model.RecipeIngredient{}))
	assert.Equal(t, "#000001", tag.Color)
}
