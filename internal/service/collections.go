package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// recipeCollection is a per-user set of recipes backed by a (user_id,
// recipe_id) table with a unique pair constraint.
type recipeCollection struct {
	db       *gorm.DB
	images   storage.ImageStore
	label    string
	model    interface{}
	newEntry func(userID, recipeID uint) interface{}
}

func (c recipeCollection) add(ctx context.Context, viewer types.Viewer, recipeID uint) (*types.ShortRecipeResponse, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	recipe, err := c.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var n int64
	if err := c.db.WithContext(ctx).Model(c.model).Where("user_id = ? AND recipe_id = ?", viewer.ID, recipeID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", c.label, err)
	}
	if n > 0 {
		return nil, c.conflict()
	}

	if err := c.db.WithContext(ctx).Create(c.newEntry(viewer.ID, recipeID)).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, c.conflict()
		}
		if isConstraintViolation(err) {
			// Either the recipe went away after the lookup above or the
			// viewer's own row is gone.
			if _, rerr := c.recipe(ctx, recipeID); rerr != nil {
				return nil, rerr
			}
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to add recipe to %s: %w", c.label, err)
	}

	resp := presenter{db: c.db, images: c.images, viewer: viewer}.shortRecipe(ctx, recipe)
	return &resp, nil
}

func (c recipeCollection) remove(ctx context.Context, viewer types.Viewer, recipeID uint) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}

	if _, err := c.recipe(ctx, recipeID); err != nil {
		return err
	}

	res := c.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", viewer.ID, recipeID).Delete(c.model)
	if res.Error != nil {
		return fmt.Errorf("failed to remove recipe from %s: %w", c.label, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "recipe in " + c.label}
	}
	return nil
}

func (c recipeCollection) recipe(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := c.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("recipe", id)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

func (c recipeCollection) conflict() error {
	return &ConflictError{Message: "recipe is already in " + c.label}
}

// FavoriteService manages the viewer's favorite recipes.
type FavoriteService struct {
	recipeCollection
}

func NewFavoriteService(db *gorm.DB, images storage.ImageStore) *FavoriteService {
	return &FavoriteService{recipeCollection{
		db:     db,
		images: images,
		label:  "favorites",
		model:  &model.Favorite{},
		newEntry: func(userID, recipeID uint) interface{} {
			return &model.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}}
}

// Add favorites a recipe. Favoriting it twice is a conflict.
func (s *FavoriteService) Add(ctx context.Context, viewer types.Viewer, recipeID uint) (*types.ShortRecipeResponse, error) {
	return s.add(ctx, viewer, recipeID)
}

// Remove unfavorites a recipe.
func (s *FavoriteService) Remove(ctx context.Context, viewer types.Viewer, recipeID uint) error {
	return s.remove(ctx, viewer, recipeID)
}

// ShoppingCartService manages the viewer's shopping cart and its export.
type ShoppingCartService struct {
	recipeCollection
	renderer *shoppinglist.Renderer
}

func NewShoppingCartService(db *gorm.DB, images storage.ImageStore, renderer *shoppinglist.Renderer) *ShoppingCartService {
	return &ShoppingCartService{
		recipeCollection: recipeCollection{
			db:     db,
			images: images,
			label:  "shopping cart",
			model:  &model.ShoppingCartItem{},
			newEntry: func(userID, recipeID uint) interface{} {
				return &model.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
			},
		},
		renderer: renderer,
	}
}

// Add puts a recipe in the cart. Adding it twice is a conflict.
func (s *ShoppingCartService) Add(ctx context.Context, viewer types.Viewer, recipeID uint) (*types.ShortRecipeResponse, error) {
	return s.add(ctx, viewer, recipeID)
}

// Remove takes a recipe out of the cart.
func (s *ShoppingCartService) Remove(ctx context.Context, viewer types.Viewer, recipeID uint) error {
	return s.remove(ctx, viewer, recipeID)
}

// ShoppingList sums the ingredient amounts of every recipe in the viewer's
// cart, one item per (name, unit) ordered by name then unit.
func (s *ShoppingCartService) ShoppingList(ctx context.Context, viewer types.Viewer) ([]shoppinglist.Item, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	var items []shoppinglist.Item
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_cart_items AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", viewer.ID).
		Group("i.name, i.measurement_unit").
		Order("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// DownloadShoppingList renders the viewer's shopping list as a PDF into w.
func (s *ShoppingCartService) DownloadShoppingList(ctx context.Context, viewer types.Viewer, w io.Writer) error {
	items, err := s.ShoppingList(ctx, viewer)
	if err != nil {
		return err
	}

	if err := s.renderer.Render(w, shoppinglist.Lines(items)); err != nil {
		return fmt.Errorf("failed to render shopping list: %w", err)
	}

	metrics.ShoppingListDownloads.Inc()
	logging.Ctx(ctx).Debug().Uint("user_id", viewer.ID).Int("lines", len(items)).Msg("shopping list rendered")
	return nil
}
