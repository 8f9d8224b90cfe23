package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Messages reported by ValidateRecipePayload.
const (
	MsgCookingTime      = "cooking time must be at least 1"
	MsgNoIngredients    = "at least one ingredient is required"
	MsgDuplicateIngred  = "duplicate ingredient"
	MsgAmountPositive   = "amount must be greater than 0"
	MsgCookingTimeMax   = "cooking time must be at most 32767"
	MsgAmountMax        = "amount must be at most 32767"
	MsgNoTags           = "at least one tag is required"
	MsgDuplicateTag     = "duplicate tag"
	MsgInvalidImage     = "invalid image"
	recipeNameMaxLength = 200
)

// MaxQuantity bounds cooking_time and ingredient amounts so that stored values
// and shopping-list sums stay well inside the integer columns.
const MaxQuantity = 32767

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	sanitizer       = bluemonday.StrictPolicy()
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// GetValidator returns the shared validator with the "username" and
// "pwbytes" rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so messages match request fields.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		// max counts runes; bcrypt limits bytes.
		_ = validate.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		})
	})
	return validate
}

// ValidateStruct checks s against its validate tags and returns a
// *ValidationError keyed by JSON field name.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := newValidationError()
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), translateError(fe.Field(), fe))
	}
	return verr
}

// validateVar checks a single value and records failures under field.
func validateVar(verr *ValidationError, field string, value interface{}, tag string) {
	err := GetValidator().Var(value, tag)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Add(field, translateError(field, fe))
		}
	}
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"username": "%s may contain only letters, digits and @/./+/-/_",
	"pwbytes":  "%s must be at most 72 bytes",
}

func translateError(field string, fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}

	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// sanitizeText strips markup from user supplied text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(s)))
}

// ValidatedIngredient is an existing ingredient and its positive amount.
type ValidatedIngredient struct {
	IngredientID uint
	Amount       int
}

// ValidatedRecipe is a checked recipe payload. Nil fields were omitted from
// a partial update and must keep their stored values.
type ValidatedRecipe struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *storage.Image
	TagIDs      []uint
	Ingredients []ValidatedIngredient
}

// ValidateRecipePayload checks a recipe create (partial == false) or partial
// update payload. Every field rule is evaluated and the failures are returned
// together as a *ValidationError, except that an unknown tag or ingredient id
// is reported as a *NotFoundError. It has no side effects.
func ValidateRecipePayload(ctx context.Context, db *gorm.DB, p *types.RecipePayload, partial bool) (*ValidatedRecipe, error) {
	verr := newValidationError()
	out := &ValidatedRecipe{}
	var missing error

	if !partial || p.CookingTime != nil {
		ct, ok := positiveInt(p.CookingTime)
		switch {
		case !ok:
			verr.Add("cooking_time", MsgCookingTime)
		case ct > MaxQuantity:
			verr.Add("cooking_time", MsgCookingTimeMax)
		default:
			out.CookingTime = &ct
		}
	}

	if !partial || p.Ingredients != nil {
		ingredients, err := validateIngredients(ctx, db, p.Ingredients, verr)
		if err != nil {
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				return nil, err
			}
			missing = err
		}
		out.Ingredients = ingredients
	}

	if !partial || p.Tags != nil {
		tagIDs, err := validateTags(ctx, db, p.Tags, verr)
		if err != nil {
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				return nil, err
			}
			if missing == nil {
				missing = err
			}
		}
		out.TagIDs = tagIDs
	}

	if !partial || p.Name != nil {
		name := ""
		if p.Name != nil {
			name = sanitizeText(*p.Name)
		}
		validateVar(verr, "name", name, fmt.Sprintf("required,max=%d", recipeNameMaxLength))
		out.Name = &name
	}

	if !partial || p.Text != nil {
		text := ""
		if p.Text != nil {
			text = sanitizeText(*p.Text)
		}
		validateVar(verr, "text", text, "required")
		out.Text = &text
	}

	if p.Image != nil && *p.Image != "" {
		img, err := storage.DecodeDataURI(*p.Image)
		if err != nil {
			verr.Add("image", MsgInvalidImage)
		} else {
			out.Image = img
		}
	}

	if missing != nil {
		return nil, missing
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return out, nil
}

func validateIngredients(ctx context.Context, db *gorm.DB, in *[]types.RecipeIngredientInput, verr *ValidationError) ([]ValidatedIngredient, error) {
	if in == nil || len(*in) == 0 {
		verr.Add("ingredients", MsgNoIngredients)
		return nil, nil
	}

	var (
		out       []ValidatedIngredient
		ids       []uint
		seen      = map[uint]bool{}
		duplicate bool
		badAmount bool
		tooLarge  bool
		missing   error
	)
	for _, item := range *in {
		id, ok := positiveInt(&item.ID)
		if !ok {
			if missing == nil {
				missing = notFound("ingredient", item.ID)
			}
			continue
		}
		if seen[uint(id)] {
			duplicate = true
		}
		seen[uint(id)] = true
		ids = append(ids, uint(id))

		amount, ok := positiveInt(&item.Amount)
		if !ok {
			badAmount = true
		} else if amount > MaxQuantity {
			tooLarge = true
		}
		out = append(out, ValidatedIngredient{IngredientID: uint(id), Amount: amount})
	}

	if duplicate {
		verr.Add("ingredients", MsgDuplicateIngred)
	}
	if badAmount {
		verr.Add("ingredients", MsgAmountPositive)
	}
	if tooLarge {
		verr.Add("ingredients", MsgAmountMax)
	}
	if missing != nil {
		return out, missing
	}
	if err := requireExisting(ctx, db, &model.Ingredient{}, "ingredient", ids); err != nil {
		return out, err
	}
	return out, nil
}

func validateTags(ctx context.Context, db *gorm.DB, in *[]types.IntString, verr *ValidationError) ([]uint, error) {
	if in == nil || len(*in) == 0 {
		verr.Add("tags", MsgNoTags)
		return nil, nil
	}

	var (
		ids       []uint
		seen      = map[uint]bool{}
		duplicate bool
		missing   error
	)
	for _, raw := range *in {
		raw := raw
		id, ok := positiveInt(&raw)
		if !ok {
			if missing == nil {
				missing = notFound("tag", raw)
			}
			continue
		}
		if seen[uint(id)] {
			duplicate = true
		}
		seen[uint(id)] = true
		ids = append(ids, uint(id))
	}

	if duplicate {
		verr.Add("tags", MsgDuplicateTag)
	}
	if missing != nil {
		return ids, missing
	}
	if err := requireExisting(ctx, db, &model.Tag{}, "tag", ids); err != nil {
		return ids, err
	}
	return ids, nil
}

// requireExisting returns a *NotFoundError for the first id of ids without a row.
func requireExisting(ctx context.Context, db *gorm.DB, m interface{}, resource string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uint
	if err := db.WithContext(ctx).Model(m).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to look up %ss: %w", resource, err)
	}

	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	for _, id := range ids {
		if !present[id] {
			return notFound(resource, id)
		}
	}
	return nil
}

func positiveInt(s *types.IntString) (int, bool) {
	if s == nil {
		return 0, false
	}
	n, err := s.Int()
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
