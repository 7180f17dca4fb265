package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/types"
)

// IAuthService defines the interface for token operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req *types.UserCreateRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, page PageRequest) ([]models.User, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
	Subscriptions(ctx context.Context, userID uuid.UUID, page PageRequest, recipesLimit int) ([]AuthorSummary, int64, error)
	AuthorSummary(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*AuthorSummary, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error)
	Update(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error)
	Delete(ctx context.Context, actorID, recipeID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, viewer *uuid.UUID, filter RecipeFilter, page PageRequest) ([]models.Recipe, int64, error)
}

// IRelationService defines the interface for favorites, the cart and
// subscriptions
type IRelationService interface {
	RelationLookup
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error
	Subscribe(ctx context.Context, userID, authorID uuid.UUID) error
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
}

// IShoppingService defines the interface for shopping list generation
type IShoppingService interface {
	Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error)
}

// ITagService defines the interface for tag operations
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	Create(ctx context.Context, in *types.TagWrite) (*models.Tag, error)
	Update(ctx context.Context, id uuid.UUID, in *types.TagWrite) (*models.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// IIngredientService defines the interface for ingredient operations
type IIngredientService interface {
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Create(ctx context.Context, in *types.IngredientWrite) (*models.Ingredient, error)
	Update(ctx context.Context, id uuid.UUID, in *types.IngredientWrite) (*models.Ingredient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IUserService       = (*UserService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ IRelationService   = (*RelationService)(nil)
	_ IShoppingService   = (*ShoppingService)(nil)
	_ ITagService        = (*TagService)(nil)
	_ IIngredientService = (*IngredientService)(nil)
)
