package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService handles registration, profiles and passwords.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account. Taken emails and usernames are field errors.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.CreatedUserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = sanitizeText(req.FirstName)
	req.LastName = sanitizeText(req.LastName)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	verr := newValidationError()
	taken, err := s.exists(ctx, "LOWER(email) = ?", strings.ToLower(req.Email))
	if err != nil {
		return nil, err
	}
	if taken {
		verr.Add("email", "a user with that email already exists")
	}
	taken, err = s.exists(ctx, "username = ?", req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.Add("username", "a user with that username already exists")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "a user with that email or username already exists"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &types.CreatedUserResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

// List returns a page of users ordered by id.
func (s *UserService) List(ctx context.Context, viewer types.Viewer, page types.PageParams) (*types.Page[types.UserResponse], error) {
	result := &types.Page[types.UserResponse]{Results: []types.UserResponse{}}
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&result.Count).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	p := presenter{db: s.db, viewer: viewer}
	for i := range users {
		result.Results = append(result.Results, p.user(ctx, &users[i]))
	}
	return result, nil
}

// Get returns a user as seen by viewer.
func (s *UserService) Get(ctx context.Context, viewer types.Viewer, id uint) (*types.UserResponse, error) {
	user, err := s.user(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := presenter{db: s.db, viewer: viewer}.user(ctx, user)
	return &resp, nil
}

// Me returns the viewer's own profile.
func (s *UserService) Me(ctx context.Context, viewer types.Viewer) (*types.UserResponse, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	return s.Get(ctx, viewer, viewer.ID)
}

// SetPassword replaces the viewer's password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, viewer types.Viewer, req *types.SetPasswordRequest) error {
	if viewer.IsAnonymous() {
		return ErrUnauthorized
	}
	if err := ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.user(ctx, viewer.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return fieldError("current_password", "invalid password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserService) user(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where(query, args...).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}
