package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipePayloadDecodesLooseIntegers(t *testing.T) {
	body := `{"cooking_time": "15", "tags": [1, "2", true], "ingredients": [{"id": 3, "amount": "abc"}]}`

	var p RecipePayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	ct, err := p.CookingTime.Int()
	require.NoError(t, err)
	assert.Equal(t, 15, ct)

	require.NotNil(t, p.Tags)
	tags := *p.Tags
	require.Len(t, tags, 3)
	first, err := tags[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	_, err = tags[2].Int()
	assert.Error(t, err)

	require.NotNil(t, p.Ingredients)
	_, err = (*p.Ingredients)[0].Amount.Int()
	assert.Error(t, err)

	assert.Nil(t, p.Name)
	assert.Nil(t, p.Image)
}

func TestPageParamsOffset(t *testing.T) {
	assert.Equal(t, 0, PageParams{Page: 0, Limit: 6}.Offset())
	assert.Equal(t, 0, PageParams{Page: 1, Limit: 6}.Offset())
	assert.Equal(t, 12, PageParams{Page: 3, Limit: 6}.Offset())
}

func TestViewerIsAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Viewer{ID: 7}.IsAnonymous())
}
