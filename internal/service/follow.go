package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FollowService manages subscriptions between users.
type FollowService struct {
	db     *gorm.DB
	images storage.ImageStore
}

func NewFollowService(db *gorm.DB, images storage.ImageStore) *FollowService {
	return &FollowService{db: db, images: images}
}

// Subscribe makes viewer follow the author and returns the author with a
// preview of at most recipesLimit recipes (all when recipesLimit <= 0).
func (s *FollowService) Subscribe(ctx context.Context, viewer types.Viewer, authorID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	author, err := s.user(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == viewer.ID {
		return nil, fieldError(NonFieldErrors, "you cannot subscribe to yourself")
	}
	if IsSubscribed(ctx, s.db, viewer, authorID) {
		return nil, &ConflictError{Message: "already subscribed to this user"}
	}

	follow := &model.Follow{UserID: viewer.ID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Omit("User", "Author").Create(follow).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "already subscribed to this user"}
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return s.subscription(ctx, viewer, author, recipesLimit)
}

// Unsubscribe removes the follow of viewer on the author.
func (s *FollowService) Unsubscribe(ctx context.Context, viewer types.Viewer, authorID uint) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if _, err := s.user(ctx, authorID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", viewer.ID, authorID).Delete(&model.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "subscription"}
	}
	return nil
}

// Subscriptions lists the authors viewer follows, ordered by id.
func (s *FollowService) Subscriptions(ctx context.Context, viewer types.Viewer, page types.PageParams, recipesLimit int) (*types.Page[types.SubscriptionResponse], error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	q := s.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", viewer.ID).
		Session(&gorm.Session{})

	result := &types.Page[types.SubscriptionResponse]{Results: []types.SubscriptionResponse{}}
	if err := q.Count(&result.Count).Error; err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []model.User
	if err := q.Order("users.id").Limit(page.Limit).Offset(page.Offset()).Find(&authors).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	for i := range authors {
		sub, err := s.subscription(ctx, viewer, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		result.Results = append(result.Results, *sub)
	}
	return result, nil
}

func (s *FollowService) subscription(ctx context.Context, viewer types.Viewer, author *model.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	p := presenter{db: s.db, images: s.images, viewer: viewer}
	resp := &types.SubscriptionResponse{
		UserResponse: p.user(ctx, author),
		Recipes:      []types.ShortRecipeResponse{},
	}

	recipes := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("author_id = ?", author.ID)
	if err := recipes.Session(&gorm.Session{}).Count(&resp.RecipesCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	preview := recipes.Session(&gorm.Session{}).Order("created_at DESC, id DESC")
	if recipesLimit > 0 {
		preview = preview.Limit(recipesLimit)
	}
	var rows []model.Recipe
	if err := preview.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	for i := range rows {
		resp.Recipes = append(resp.Recipes, p.shortRecipe(ctx, &rows[i]))
	}
	return resp, nil
}

func (s *FollowService) user(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
