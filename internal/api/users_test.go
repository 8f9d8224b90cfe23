package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/users/", "", map[string]string{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "s3cret-password",
	})
	assertStatus(t, w, http.StatusCreated)
	assert.NotContains(t, w.Body.String(), "is_subscribed")
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{
		"email": "chef@example.com", "password": "s3cret-password",
	})
	assertStatus(t, w, http.StatusOK)
	var token types.TokenResponse
	decode(t, w, &token)
	require.NotEmpty(t, token.AuthToken)

	w = env.do(http.MethodGet, "/api/users/me/", token.AuthToken, nil)
	assertStatus(t, w, http.StatusOK)
	var me types.UserResponse
	decode(t, w, &me)
	assert.Equal(t, "chef", me.Username)

	w = env.do(http.MethodPost, "/api/auth/token/logout/", token.AuthToken, nil)
	assertStatus(t, w, http.StatusNoContent)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/users", "", map[string]string{"email": "not-an-email"})
	assertStatus(t, w, http.StatusBadRequest)

	var fields map[string][]string
	decode(t, w, &fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")

	w = env.do(http.MethodPost, "/api/users", "", `{"email": `)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestLoginWithWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateUser(t, env.db, "cook")

	w := env.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": "cook@example.com", "password": "nope-nope",
	})
	assertStatus(t, w, http.StatusBadRequest)

	var body map[string][]string
	decode(t, w, &body)
	assert.NotEmpty(t, body["non_field_errors"])
}

func TestMeRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	assertStatus(t, env.do(http.MethodGet, "/api/users/me/", "", nil), http.StatusUnauthorized)
	assertStatus(t, env.do(http.MethodGet, "/api/users/me/", "garbage", nil), http.StatusUnauthorized)
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateUser(t, env.db, "cook")
	token := env.token(user)

	w := env.do(http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": "wrong", "new_password": "another-password",
	})
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(http.MethodPost, "/api/users/set_password/", token, map[string]string{
		"current_password": testhelpers.TestPassword, "new_password": "another-password",
	})
	assertStatus(t, w, http.StatusNoContent)
}

func TestUserListPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		testhelpers.CreateUser(t, env.db, fmt.Sprintf("user%d", i))
	}

	w := env.do(http.MethodGet, "/api/users/?limit=2", "", nil)
	assertStatus(t, w, http.StatusOK)
	var page types.Page[types.UserResponse]
	decode(t, w, &page)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users/?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = env.do(http.MethodGet, "/api/users/?limit=2&page=2", "", nil)
	assertStatus(t, w, http.StatusOK)
	page = types.Page[types.UserResponse]{}
	decode(t, w, &page)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users/?limit=2", *page.Previous)

	assertStatus(t, env.do(http.MethodGet, "/api/users/?limit=2&page=3", "", nil), http.StatusNotFound)
	assertStatus(t, env.do(http.MethodGet, "/api/users/?page=abc", "", nil), http.StatusNotFound)
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	user := testhelpers.CreateUser(t, env.db, "cook")

	assertStatus(t, env.do(http.MethodGet, fmt.Sprintf("/api/users/%d/", user.ID), "", nil), http.StatusOK)
	assertStatus(t, env.do(http.MethodGet, "/api/users/9999/", "", nil), http.StatusNotFound)
	assertStatus(t, env.do(http.MethodGet, "/api/users/abc/", "", nil), http.StatusNotFound)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	reader := testhelpers.CreateUser(t, env.db, "reader")
	author := testhelpers.CreateUser(t, env.db, "author")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, env.db, author, testhelpers.RecipeFixture{Name: fmt.Sprintf("Recipe %d", i)})
	}
	token := env.token(reader)
	subscribe := fmt.Sprintf("/api/users/%d/subscribe/", author.ID)

	assertStatus(t, env.do(http.MethodPost, subscribe, "", nil), http.StatusUnauthorized)

	w := env.do(http.MethodPost, subscribe+"?recipes_limit=2", token, nil)
	assertStatus(t, w, http.StatusCreated)
	var sub types.SubscriptionResponse
	decode(t, w, &sub)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 2)
	assert.Equal(t, int64(3), sub.RecipesCount)

	assertStatus(t, env.do(http.MethodPost, subscribe, token, nil), http.StatusConflict)
	assertStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", reader.ID), token, nil), http.StatusBadRequest)
	assertStatus(t, env.do(http.MethodPost, "/api/users/9999/subscribe/", token, nil), http.StatusNotFound)

	w = env.do(http.MethodGet, "/api/users/subscriptions/?recipes_limit=1", token, nil)
	assertStatus(t, w, http.StatusOK)
	var page types.Page[types.SubscriptionResponse]
	decode(t, w, &page)
	require.Equal(t, int64(1), page.Count)
	assert.Len(t, page.Results[0].Recipes, 1)
	assert.Equal(t, "Recipe 2", page.Results[0].Recipes[0].Name)

	w = env.do(http.MethodGet, "/api/users/subscriptions/?recipes_limit=many", token, nil)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "recipes_limit")

	assertStatus(t, env.do(http.MethodDelete, subscribe, token, nil), http.StatusNoContent)
	assertStatus(t, env.do(http.MethodDelete, subscribe, token, nil), http.StatusNotFound)
	assert.Equal(t, int64(0), testhelpers.CountRows(t, env.db, &model.Follow{}))
}
