package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles what the REST handlers need.
type Services struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Follows      *service.FollowService
	Recipes      *service.RecipeService
	Favorites    *service.FavoriteService
	ShoppingCart *service.ShoppingCartService
	Reference    *service.ReferenceService
	// RecipeLimiter throttles recipe creation. Nil disables it.
	RecipeLimiter *middleware.RateLimiter
	PageSize      int
}

// RegisterRoutes mounts every REST resource on router.
func RegisterRoutes(router *gin.RouterGroup, s Services) {
	router.Use(withOrigin())
	NewAuthHandler(s.Auth).RegisterRoutes(router)
	NewUserHandler(s.Users, s.Follows, s.Auth, s.PageSize).RegisterRoutes(router)
	NewReferenceHandler(s.Reference).RegisterRoutes(router)
	NewRecipeHandler(s.Recipes, s.Favorites, s.ShoppingCart, s.Auth, s.RecipeLimiter, s.PageSize).RegisterRoutes(router)
}
