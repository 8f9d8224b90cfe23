package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// IntString keeps the raw text of a JSON number or string so that malformed
// integers reach validation instead of failing request decoding.
type IntString string

// UnmarshalJSON accepts any JSON value.
func (s *IntString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = IntString(str)
		return nil
	}
	*s = IntString(b)
	return nil
}

// Int parses the value as a base 10 integer.
func (s IntString) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(s)))
}

// RecipeIngredientInput is one entry of a recipe payload's ingredient list.
type RecipeIngredientInput struct {
	ID     IntString `json:"id"`
	Amount IntString `json:"amount"`
}

// RecipePayload is the body of recipe create and update requests. Nil fields
// were omitted by the client.
type RecipePayload struct {
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
	Tags        *[]IntString             `json:"tags"`
	Image       *string                  `json:"image"`
	Name        *string                  `json:"name"`
	Text        *string                  `json:"text"`
	CookingTime *IntString               `json:"cooking_time"`
}

// RegisterRequest represents the user registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128,pwbytes"`
}

// LoginRequest represents the token login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordRequest changes the password of the current user
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,pwbytes"`
}

// RecipeFilter narrows a recipe listing.
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// PageParams selects a page of a listing. Page is 1-based.
type PageParams struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p PageParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
