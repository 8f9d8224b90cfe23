package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	ctx := context.Background()

	tags, ingredients, err := seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, tags)
	assert.Equal(t, 18, ingredients)

	tags, ingredients, err = seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, tags)
	assert.Zero(t, ingredients)

	assert.Equal(t, int64(3), testhelpers.CountRows(t, db, &model.Tag{}))
	assert.Equal(t, int64(2), testhelpers.CountRows(t, db, &model.Ingredient{}, "name = ?", "salt"))
}
