package testhelpers

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/model"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "testpassword123"

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &model.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTag inserts a tag whose name, slug and color are derived from slug and n.
func CreateTag(t *testing.T, db *gorm.DB, slug string, n int) *model.Tag {
	t.Helper()

	tag := &model.Tag{
		Name:  "Tag " + slug,
		Color: fmt.Sprintf("#%06X", n),
		Slug:  slug,
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// CreateIngredient inserts an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *model.Ingredient {
	t.Helper()

	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("failed to create test ingredient: %v", err)
	}
	return ing
}

// RecipeFixture describes a recipe to insert directly, bypassing validation.
type RecipeFixture struct {
	Name        string
	CookingTime int
	Tags        []*model.Tag
	// Amounts maps each ingredient to its amount in the recipe.
	Amounts map[*model.Ingredient]int
}

// CreateRecipe inserts a recipe with its tag and ingredient rows.
func CreateRecipe(t *testing.T, db *gorm.DB, author *model.User, f RecipeFixture) *model.Recipe {
	t.Helper()

	if f.Name == "" {
		f.Name = "Test recipe"
	}
	if f.CookingTime == 0 {
		f.CookingTime = 10
	}

	recipe := &model.Recipe{
		AuthorID:    author.ID,
		Name:        f.Name,
		Text:        "Mix and bake.",
		CookingTime: f.CookingTime,
	}
	if err := db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}

	for _, tag := range f.Tags {
		if err := db.Create(&model.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("failed to tag test recipe: %v", err)
		}
	}
	for ing, amount := range f.Amounts {
		row := &model.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID, Amount: amount}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to add ingredient to test recipe: %v", err)
		}
	}
	return recipe
}

// CountRows returns the number of rows of m matching the optional condition.
func CountRows(t *testing.T, db *gorm.DB, m interface{}, conds ...interface{}) int64 {
	t.Helper()

	var n int64
	q := db.Model(m)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
