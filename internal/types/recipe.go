package types

import (
	"github.com/google/uuid"
)

// IngredientAmount references an existing ingredient in a recipe write.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id"`
	Amount int       `json:"amount"`
}

// RecipeWrite is the request body for creating or updating a recipe.
// Image is a base64 data URI and may be omitted on update.
type RecipeWrite struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uuid.UUID        `json:"tags"`
	Image       string             `json:"image"`
	Name        string             `json:"name" binding:"required,max=200"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time"`
}

type RecipeIngredientRead struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeRead is the full recipe as seen by a viewer.
type RecipeRead struct {
	ID               uuid.UUID              `json:"id"`
	Tags             []TagRead              `json:"tags"`
	Author           UserRead               `json:"author"`
	Ingredients      []RecipeIngredientRead `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeMinified is the short form used by favorites, the cart and
// subscription previews.
type RecipeMinified struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}
