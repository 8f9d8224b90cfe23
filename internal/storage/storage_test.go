package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
)

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))

	img, err := DecodeDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, []byte("fake png bytes"), img.Data)

	for _, bad := range []string{
		"",
		"not a data uri",
		"data:image/png," + payload,
		"data:text/plain;base64," + payload,
		"data:image/png;base64,%%%",
	} {
		_, err := DecodeDataURI(bad)
		assert.ErrorIs(t, err, ErrInvalidImage, bad)
	}
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)

	img := &Image{Data: []byte("jpeg"), ContentType: "image/jpeg", Ext: "jpg"}
	key := NewImageKey(img)
	assert.True(t, strings.HasPrefix(key, ImageDir+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	require.NoError(t, store.Save(context.Background(), key, img))
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
	assert.Equal(t, "/media/"+key, store.URL(key))

	require.NoError(t, store.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(context.Background(), key))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	err = store.Save(context.Background(), "../outside.png", &Image{Data: []byte("x")})
	assert.Error(t, err)
}

func TestS3StoreURL(t *testing.T) {
	store := NewS3Store(&config.S3Config{BucketName: "foodgram-media"})
	assert.Equal(t, "https://foodgram-media.s3.amazonaws.com/recipes/images/a.png", store.URL("recipes/images/a.png"))

	custom := NewS3Store(&config.S3Config{BucketName: "b", PublicURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/recipes/images/a.png", custom.URL("recipes/images/a.png"))
}

func TestAbsoluteURL(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "/media/recipes/images/a.png", AbsoluteURL(ctx, "/media/recipes/images/a.png"))

	ctx = WithOrigin(ctx, "https://foodgram.example/")
	assert.Equal(t, "https://foodgram.example/media/recipes/images/a.png", AbsoluteURL(ctx, "/media/recipes/images/a.png"))
	assert.Equal(t, "https://cdn.example/a.png", AbsoluteURL(ctx, "https://cdn.example/a.png"))
	assert.Equal(t, "//cdn.example/a.png", AbsoluteURL(ctx, "//cdn.example/a.png"))
}
