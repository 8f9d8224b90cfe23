package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// presenter builds viewer-relative responses from loaded models.
type presenter struct {
	db     *gorm.DB
	images storage.ImageStore
	viewer types.Viewer
}

func (p presenter) user(ctx context.Context, u *model.User) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: IsSubscribed(ctx, p.db, p.viewer, u.ID),
	}
}

func (p presenter) recipe(ctx context.Context, r *model.Recipe) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:               r.ID,
		Tags:             make([]types.TagResponse, 0, len(r.Tags)),
		Ingredients:      make([]types.RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      IsFavorited(ctx, p.db, p.viewer, r.ID),
		IsInShoppingCart: IsInShoppingCart(ctx, p.db, p.viewer, r.ID),
		Name:             r.Name,
		Image:            p.imageURL(ctx, r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if r.Author != nil {
		resp.Author = p.user(ctx, r.Author)
	}
	for _, rt := range r.Tags {
		if rt.Tag != nil {
			resp.Tags = append(resp.Tags, tagResponse(rt.Tag))
		}
	}
	for _, ri := range r.Ingredients {
		if ri.Ingredient == nil {
			continue
		}
		resp.Ingredients = append(resp.Ingredients, types.RecipeIngredientResponse{
			ID:              ri.Ingredient.ID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return resp
}

func (p presenter) shortRecipe(ctx context.Context, r *model.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.imageURL(ctx, r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p presenter) imageURL(ctx context.Context, key string) *string {
	if key == "" || p.images == nil {
		return nil
	}
	url := storage.AbsoluteURL(ctx, p.images.URL(key))
	return &url
}

func tagResponse(t *model.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i *model.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// preloadRecipe loads everything the full recipe representation needs,
// keeping tags and ingredients in the order they were given.
func preloadRecipe(q *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }
	return q.Preload("Author").
		Preload("Tags", byID).
		Preload("Tags.Tag").
		Preload("Ingredients", byID).
		Preload("Ingredients.Ingredient")
}
