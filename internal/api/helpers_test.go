package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupSQLite(t)
	images, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	router := gin.New()
	router.RedirectTrailingSlash = false
	api.RegisterRoutes(router.Group("/api"), api.Services{
		Auth:         auth,
		Users:        service.NewUserService(db),
		Follows:      service.NewFollowService(db, images),
		Recipes:      service.NewRecipeService(db, images),
		Favorites:    service.NewFavoriteService(db, images),
		ShoppingCart: service.NewShoppingCartService(db, images, shoppinglist.NewRenderer("Shopping list", "")),
		Reference:    service.NewReferenceService(db),
		PageSize:     6,
	})

	return &testEnv{t: t, db: db, router: router, auth: auth}
}

// token issues a token for user.
func (e *testEnv) token(user *model.User) string {
	e.t.Helper()
	token, err := e.auth.GenerateToken(user)
	require.NoError(e.t, err)
	return token
}

// do performs a request. token may be empty; body is JSON encoded unless nil.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

