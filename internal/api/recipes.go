package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.pdf"

type RecipeHandler struct {
	recipeService   *service.RecipeService
	favoriteService *service.FavoriteService
	cartService     *service.ShoppingCartService
	validator       middleware.TokenValidator
	limiter         *middleware.RateLimiter
	pageSize        int
}

// NewRecipeHandler creates a recipe handler. limiter may be nil, in which case
// recipe creation is not rate limited.
func NewRecipeHandler(
	recipeService *service.RecipeService,
	favoriteService *service.FavoriteService,
	cartService *service.ShoppingCartService,
	validator middleware.TokenValidator,
	limiter *middleware.RateLimiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		favoriteService: favoriteService,
		cartService:     cartService,
		validator:       validator,
		limiter:         limiter,
		pageSize:        pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)
	optionalAuth := middleware.OptionalAuth(h.validator)

	create := []gin.HandlerFunc{requireAuth}
	if h.limiter != nil {
		create = append(create, h.limiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		handle(recipes, http.MethodGet, "", optionalAuth, h.ListRecipes)
		handle(recipes, http.MethodPost, "", create...)
		handle(recipes, http.MethodGet, "/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		handle(recipes, http.MethodGet, "/:id", optionalAuth, h.GetRecipe)
		handle(recipes, http.MethodPatch, "/:id", requireAuth, h.PatchRecipe)
		handle(recipes, http.MethodPut, "/:id", requireAuth, h.PutRecipe)
		handle(recipes, http.MethodDelete, "/:id", requireAuth, h.DeleteRecipe)
		handle(recipes, http.MethodPost, "/:id/favorite", requireAuth, h.AddFavorite)
		handle(recipes, http.MethodDelete, "/:id/favorite", requireAuth, h.RemoveFavorite)
		handle(recipes, http.MethodPost, "/:id/shopping_cart", requireAuth, h.AddToShoppingCart)
		handle(recipes, http.MethodDelete, "/:id/shopping_cart", requireAuth, h.RemoveFromShoppingCart)
	}
}

// ListRecipes handles the recipe feed with its author, tag and viewer filters
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}

	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"author": []string{"author must be a user id"}})
			return
		}
		filter.AuthorID = uint(id)
	}

	page, err := h.recipeService.List(c.Request.Context(), middleware.Viewer(c), filter, params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, params, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var payload types.RecipePayload
	if !bindJSON(c, &payload) {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), middleware.Viewer(c), &payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// PatchRecipe updates only the fields present in the body
func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	h.updateRecipe(c, true)
}

// PutRecipe replaces the recipe; every field is required
func (h *RecipeHandler) PutRecipe(c *gin.Context) {
	h.updateRecipe(c, false)
}

func (h *RecipeHandler) updateRecipe(c *gin.Context, partial bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload types.RecipePayload
	if !bindJSON(c, &payload) {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), middleware.Viewer(c), id, &payload, partial)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addToCollection(c, h.favoriteService.Add)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeFromCollection(c, h.favoriteService.Remove)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addToCollection(c, h.cartService.Add)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeFromCollection(c, h.cartService.Remove)
}

// DownloadShoppingCart answers with the viewer's aggregated shopping list as a PDF.
// The document is buffered so a rendering failure can still produce a JSON error.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.cartService.DownloadShoppingList(c.Request.Context(), middleware.Viewer(c), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

type (
	addFunc    func(ctx context.Context, viewer types.Viewer, recipeID uint) (*types.ShortRecipeResponse, error)
	removeFunc func(ctx context.Context, viewer types.Viewer, recipeID uint) error
)

func (h *RecipeHandler) addToCollection(c *gin.Context, add addFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) removeFromCollection(c *gin.Context, remove removeFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
