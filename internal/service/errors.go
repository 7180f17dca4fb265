package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by this package that is caused by the
// caller wraps exactly one of these.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrUnauthenticated = errors.New("authentication required")
)

// FieldError is a caller error tied to a request field. Field is empty for
// errors that concern the request as a whole.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

func fieldError(kind error, field, format string, args ...interface{}) *FieldError {
	return &FieldError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Recipe composition
var (
	ErrNoTags               = &FieldError{ErrValidation, "tags", "tags field is missing"}
	ErrDuplicateTags        = &FieldError{ErrValidation, "tags", "recipe has repeated tags"}
	ErrNoIngredients        = &FieldError{ErrValidation, "ingredients", "ingredients field is missing"}
	ErrDuplicateIngredients = &FieldError{ErrValidation, "ingredients", "recipe has repeated ingredients"}
	ErrAmountRange          = &FieldError{ErrValidation, "ingredients", "amount must be between 1 and 32000"}
	ErrCookingTimeRange     = &FieldError{ErrValidation, "cooking_time", "cooking time must be between 1 and 32000"}
	ErrImageRequired        = &FieldError{ErrValidation, "image", "image is required"}
	ErrInvalidImage         = &FieldError{ErrValidation, "image", "image must be a base64 encoded data URI of a png, jpeg, gif or webp picture"}
	ErrRecipeNotFound       = &FieldError{ErrNotFound, "", "recipe not found"}
	ErrNotAuthor            = &FieldError{ErrPermission, "", "only the author can modify this recipe"}
)

// Relations
var (
	ErrAlreadyFavorited  = &FieldError{ErrConflict, "errors", "recipe is already in favorites"}
	ErrNotFavorited      = &FieldError{ErrNotFound, "errors", "recipe is not in favorites"}
	ErrAlreadyInCart     = &FieldError{ErrConflict, "errors", "recipe is already in the shopping cart"}
	ErrNotInCart         = &FieldError{ErrNotFound, "errors", "recipe is not in the shopping cart"}
	ErrAlreadySubscribed = &FieldError{ErrConflict, "errors", "subscription to the author already exists"}
	ErrNotSubscribed     = &FieldError{ErrNotFound, "errors", "subscription to the author does not exist"}
	ErrSelfSubscription  = &FieldError{ErrValidation, "errors", "cannot subscribe to yourself"}
)

// Users and catalog
var (
	ErrUserNotFound       = &FieldError{ErrNotFound, "", "user not found"}
	ErrUsernameTaken      = &FieldError{ErrConflict, "username", "username is already taken"}
	ErrEmailTaken         = &FieldError{ErrConflict, "email", "a user with this email already exists"}
	ErrInvalidUsername    = &FieldError{ErrValidation, "username", "username may contain only letters, digits and @/./+/-/_"}
	ErrInvalidCredentials = &FieldError{ErrValidation, "non_field_errors", "unable to log in with provided credentials"}
	ErrWrongPassword      = &FieldError{ErrValidation, "current_password", "invalid password"}
	ErrInvalidToken       = &FieldError{ErrUnauthenticated, "", "invalid or expired token"}
	ErrTagNotFound        = &FieldError{ErrNotFound, "", "tag not found"}
	ErrSlugTaken          = &FieldError{ErrConflict, "slug", "tag with this slug already exists"}
	ErrInvalidSlug        = &FieldError{ErrValidation, "slug", "slug may contain only latin letters, digits, hyphens and underscores"}
	ErrIngredientNotFound = &FieldError{ErrNotFound, "", "ingredient not found"}
	ErrIngredientExists   = &FieldError{ErrConflict, "name", "ingredient with this name and unit already exists"}
	ErrIngredientInUse    = &FieldError{ErrConflict, "errors", "ingredient is used by recipes"}
	ErrStaffOnly          = &FieldError{ErrPermission, "", "only staff can modify the catalog"}
)

// translate maps gorm errors onto the package's kinds. Unknown errors are
// returned unchanged.
func translate(err error, duplicate, missing error) error {
	switch {
	case err == nil:
		return nil
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	case missing != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return missing
	}
	return err
}
