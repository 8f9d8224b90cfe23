package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IsSubscribed reports whether viewer follows the author.
func IsSubscribed(ctx context.Context, db *gorm.DB, viewer types.Viewer, authorID uint) bool {
	return viewerHasRow(ctx, db, viewer, &model.Follow{}, "author_id", authorID)
}

// IsFavorited reports whether viewer has favorited the recipe.
func IsFavorited(ctx context.Context, db *gorm.DB, viewer types.Viewer, recipeID uint) bool {
	return viewerHasRow(ctx, db, viewer, &model.Favorite{}, "recipe_id", recipeID)
}

// IsInShoppingCart reports whether the recipe is in viewer's shopping cart.
func IsInShoppingCart(ctx context.Context, db *gorm.DB, viewer types.Viewer, recipeID uint) bool {
	return viewerHasRow(ctx, db, viewer, &model.ShoppingCartItem{}, "recipe_id", recipeID)
}

// viewerHasRow is false for anonymous viewers and on lookup failure.
func viewerHasRow(ctx context.Context, db *gorm.DB, viewer types.Viewer, m interface{}, column string, id uint) bool {
	if viewer.IsAnonymous() || db == nil {
		return false
	}

	var n int64
	err := db.WithContext(ctx).Model(m).
		Where("user_id = ? AND "+column+" = ?", viewer.ID, id).
		Count(&n).Error
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("column", column).Uint("id", id).Msg("failed to look up viewer flag")
		return false
	}
	return n > 0
}
