package service_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const pngDataURI = "data:image/png;base64,iVBORw0KGgo="

type fixture struct {
	db     *gorm.DB
	images *storage.LocalStore

	author *model.User
	reader *model.User

	breakfast *model.Tag
	dinner    *model.Tag

	flour *model.Ingredient
	sugar *model.Ingredient
	milk  *model.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testhelpers.SetupSQLite(t)
	images, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	return &fixture{
		db:        db,
		images:    images,
		author:    testhelpers.CreateUser(t, db, "author"),
		reader:    testhelpers.CreateUser(t, db, "reader"),
		breakfast: testhelpers.CreateTag(t, db, "breakfast", 1),
		dinner:    testhelpers.CreateTag(t, db, "dinner", 2),
		flour:     testhelpers.CreateIngredient(t, db, "flour", "g"),
		sugar:     testhelpers.CreateIngredient(t, db, "sugar", "g"),
		milk:      testhelpers.CreateIngredient(t, db, "milk", "ml"),
	}
}

func viewerOf(u *model.User) types.Viewer {
	return types.Viewer{ID: u.ID}
}

// payload decodes a JSON request body the way the HTTP layer does.
func payload(t *testing.T, format string, args ...interface{}) *types.RecipePayload {
	t.Helper()

	var p types.RecipePayload
	require.NoError(t, json.Unmarshal([]byte(fmt.Sprintf(format, args...)), &p))
	return &p
}

// validPayload is a complete create payload using the fixture's reference data.
func (f *fixture) validPayload(t *testing.T) *types.RecipePayload {
	return payload(t, `{
		"name": "Pancakes",
		"text": "Whisk and fry.",
		"cooking_time": 20,
		"tags": [%d, %d],
		"ingredients": [{"id": %d, "amount": 200}, {"id": %d, "amount": 300}]
	}`, f.breakfast.ID, f.dinner.ID, f.flour.ID, f.milk.ID)
}
