package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestViewerFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe := testhelpers.CreateRecipe(t, f.db, f.author, testhelpers.RecipeFixture{})

	require.NoError(t, f.db.Create(&model.Follow{UserID: f.reader.ID, AuthorID: f.author.ID}).Error)
	require.NoError(t, f.db.Create(&model.Favorite{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&model.ShoppingCartItem{UserID: f.reader.ID, RecipeID: recipe.ID}).Error)

	reader := viewerOf(f.reader)
	assert.True(t, service.IsSubscribed(ctx, f.db, reader, f.author.ID))
	assert.True(t, service.IsFavorited(ctx, f.db, reader, recipe.ID))
	assert.True(t, service.IsInShoppingCart(ctx, f.db, reader, recipe.ID))

	author := viewerOf(f.author)
	assert.False(t, service.IsSubscribed(ctx, f.db, author, f.reader.ID))
	assert.False(t, service.IsFavorited(ctx, f.db, author, recipe.ID))
	assert.False(t, service.IsInShoppingCart(ctx, f.db, author, recipe.ID))

	assert.False(t, service.IsSubscribed(ctx, f.db, types.Anonymous, f.author.ID))
	assert.False(t, service.IsFavorited(ctx, f.db, types.Anonymous, recipe.ID))
	assert.False(t, service.IsInShoppingCart(ctx, f.db, types.Anonymous, recipe.ID))
}

func TestViewerFlagsNeverFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, func() {
		assert.False(t, service.IsSubscribed(ctx, f.db, viewerOf(f.reader), f.author.ID))
		assert.False(t, service.IsFavorited(ctx, f.db, viewerOf(f.reader), 1))
		assert.False(t, service.IsInShoppingCart(ctx, f.db, viewerOf(f.reader), 1))
		assert.False(t, service.IsFavorited(ctx, nil, viewerOf(f.reader), 1))
	})
}
