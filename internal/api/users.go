package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	validator     middleware.TokenValidator
	pageSize      int
}

func NewUserHandler(userService *service.UserService, followService *service.FollowService, validator middleware.TokenValidator, pageSize int) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		validator:     validator,
		pageSize:      pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)
	optionalAuth := middleware.OptionalAuth(h.validator)

	users := router.Group("/users")
	{
		handle(users, http.MethodGet, "", optionalAuth, h.ListUsers)
		handle(users, http.MethodPost, "", h.Register)
		handle(users, http.MethodGet, "/me", requireAuth, h.Me)
		handle(users, http.MethodPost, "/set_password", requireAuth, h.SetPassword)
		handle(users, http.MethodGet, "/subscriptions", requireAuth, h.Subscriptions)
		handle(users, http.MethodGet, "/:id", optionalAuth, h.GetUser)
		handle(users, http.MethodPost, "/:id/subscribe", requireAuth, h.Subscribe)
		handle(users, http.MethodDelete, "/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}

	page, err := h.userService.List(c.Request.Context(), middleware.Viewer(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, params, page)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.Viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), middleware.Viewer(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	params, ok := pageParams(c, h.pageSize)
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	page, err := h.followService.Subscriptions(c.Request.Context(), middleware.Viewer(c), params, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, params, page)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	sub, err := h.followService.Subscribe(c.Request.Context(), middleware.Viewer(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.followService.Unsubscribe(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads the optional recipes_limit query parameter; 0 means no limit.
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"recipes_limit": []string{"recipes_limit must be a non-negative integer"}})
		return 0, false
	}
	return n, true
}
