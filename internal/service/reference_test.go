package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestReferenceServiceIngredients(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewReferenceService(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "sugar", "tbsp")
	testhelpers.CreateIngredient(t, db, "100% juice", "ml")
	testhelpers.CreateIngredient(t, db, "1000 island dressing", "ml")

	names := func(prefix string) []string {
		list, err := svc.ListIngredients(ctx, prefix)
		require.NoError(t, err)
		out := []string{}
		for _, i := range list {
			out = append(out, i.Name+"/"+i.MeasurementUnit)
		}
		return out
	}

	assert.Len(t, names(""), 5)
	assert.Equal(t, []string{"Sugar/g", "sugar/tbsp"}, names("SU"))
	assert.Equal(t, []string{"salt/g"}, names("sa"))
	assert.Equal(t, []string{"100% juice/ml"}, names("100%"))
	assert.Empty(t, names("pepper"))
}

func TestReferenceServiceTags(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewReferenceService(db)
	ctx := context.Background()

	lunch := testhelpers.CreateTag(t, db, "lunch", 10)
	testhelpers.CreateTag(t, db, "supper", 11)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "lunch", tags[0].Slug)

	tag, err := svc.GetTag(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "#00000A", tag.Color)

	_, err = svc.GetTag(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.GetIngredient(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
