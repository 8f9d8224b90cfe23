package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images storage.ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images storage.ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

func (s *RecipeService) presenter(viewer types.Viewer) presenter {
	return presenter{db: s.db, images: s.images, viewer: viewer}
}

// List returns a page of recipes, newest first. The favorited and shopping
// cart filters match nothing for anonymous viewers.
func (s *RecipeService) List(ctx context.Context, viewer types.Viewer, filter types.RecipeFilter, page types.PageParams) (*types.Page[types.RecipeResponse], error) {
	result := &types.Page[types.RecipeResponse]{Results: []types.RecipeResponse{}}
	if (filter.IsFavorited || filter.IsInShoppingCart) && viewer.IsAnonymous() {
		return result, nil
	}

	q := s.db.WithContext(ctx).Model(&model.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.IsFavorited {
		q = q.Where("recipes.id IN (?)", s.db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
	}
	if filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", s.db.Model(&model.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", viewer.ID))
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&result.Count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []model.Recipe
	err := preloadRecipe(q).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	p := s.presenter(viewer)
	for i := range recipes {
		result.Results = append(result.Results, p.recipe(ctx, &recipes[i]))
	}
	return result, nil
}

// Get returns the full representation of a recipe.
func (s *RecipeService) Get(ctx context.Context, viewer types.Viewer, id uint) (*types.RecipeResponse, error) {
	var recipe model.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	resp := s.presenter(viewer).recipe(ctx, &recipe)
	return &resp, nil
}

// Create validates the payload and stores the recipe with viewer as author.
func (s *RecipeService) Create(ctx context.Context, viewer types.Viewer, payload *types.RecipePayload) (*types.RecipeResponse, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	v, err := ValidateRecipePayload(ctx, s.db, payload, false)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.saveImage(ctx, v.Image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    viewer.ID,
		Name:        *v.Name,
		Text:        *v.Text,
		CookingTime: *v.CookingTime,
		Image:       imageKey,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := createRecipeTags(tx, recipe.ID, v.TagIDs); err != nil {
			return err
		}
		return createRecipeIngredients(tx, recipe.ID, v.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, mapWriteError("create recipe", err)
	}

	metrics.RecipesCreated.Inc()
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", viewer.ID).Msg("recipe created")

	return s.Get(ctx, viewer, recipe.ID)
}

// Update changes a recipe owned by viewer. With partial set, omitted fields
// keep their stored values; omitted tags or ingredients always keep the
// existing associations. Present associations are replaced as a whole.
func (s *RecipeService) Update(ctx context.Context, viewer types.Viewer, id uint, payload *types.RecipePayload, partial bool) (*types.RecipeResponse, error) {
	recipe, err := s.ownedRecipe(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	v, err := ValidateRecipePayload(ctx, s.db, payload, partial)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.saveImage(ctx, v.Image)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if v.Name != nil {
		updates["name"] = *v.Name
	}
	if v.Text != nil {
		updates["text"] = *v.Text
	}
	if v.CookingTime != nil {
		updates["cooking_time"] = *v.CookingTime
	}
	if imageKey != "" {
		updates["image"] = imageKey
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if v.TagIDs != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeTag{}).Error; err != nil {
				return err
			}
			if err := createRecipeTags(tx, id, v.TagIDs); err != nil {
				return err
			}
		}
		if v.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeIngredient{}).Error; err != nil {
				return err
			}
			if err := createRecipeIngredients(tx, id, v.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, mapWriteError("update recipe", err)
	}

	if imageKey != "" && recipe.Image != "" {
		s.discardImage(ctx, recipe.Image)
	}

	return s.Get(ctx, viewer, id)
}

// Delete removes a recipe owned by viewer together with its image.
func (s *RecipeService) Delete(ctx context.Context, viewer types.Viewer, id uint) error {
	recipe, err := s.ownedRecipe(ctx, viewer, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&model.Recipe{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if recipe.Image != "" {
		s.discardImage(ctx, recipe.Image)
	}
	return nil
}

// ownedRecipe loads a recipe and checks that viewer is its author.
func (s *RecipeService) ownedRecipe(ctx context.Context, viewer types.Viewer, id uint) (*model.Recipe, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if recipe.AuthorID != viewer.ID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func (s *RecipeService) saveImage(ctx context.Context, img *storage.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	key := storage.NewImageKey(img)
	if err := s.images.Save(ctx, key, img); err != nil {
		return "", fmt.Errorf("failed to save recipe image: %w", err)
	}
	return key, nil
}

func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to delete recipe image")
	}
}

func createRecipeTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]model.RecipeTag, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = model.RecipeTag{RecipeID: recipeID, TagID: tagID}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func createRecipeIngredients(tx *gorm.DB, recipeID uint, items []ValidatedIngredient) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = model.RecipeIngredient{RecipeID: recipeID, IngredientID: item.IngredientID, Amount: item.Amount}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

// mapWriteError turns constraint failures raced past validation into conflicts.
func mapWriteError(action string, err error) error {
	if isUniqueViolation(err) || isConstraintViolation(err) {
		return &ConflictError{Message: fmt.Sprintf("failed to %s: conflicting data", action)}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
