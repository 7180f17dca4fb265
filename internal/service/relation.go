package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/metrics"
	"github.com/pageza/recipedia/backend/internal/models"
)

// RelationService toggles a user's favorites, shopping cart entries and
// subscriptions. Creating an existing relation is a conflict and deleting a
// missing one is reported as not found; neither is a silent success.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// toggle describes one user-scoped relation table.
type toggle struct {
	name      string
	model     func(userID, targetID uuid.UUID) interface{}
	column    string
	duplicate error
	missing   error
}

var (
	favoriteToggle = toggle{
		name: "favorite",
		model: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		column:    "recipe_id",
		duplicate: ErrAlreadyFavorited,
		missing:   ErrNotFavorited,
	}
	cartToggle = toggle{
		name: "shopping_cart",
		model: func(userID, recipeID uuid.UUID) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
		column:    "recipe_id",
		duplicate: ErrAlreadyInCart,
		missing:   ErrNotInCart,
	}
	subscriptionToggle = toggle{
		name: "subscription",
		model: func(userID, authorID uuid.UUID) interface{} {
			return &models.Subscription{UserID: userID, AuthorID: authorID}
		},
		column:    "author_id",
		duplicate: ErrAlreadySubscribed,
		missing:   ErrNotSubscribed,
	}
)

func (s *RelationService) add(ctx context.Context, t toggle, userID, targetID uuid.UUID) error {
	err := s.db.WithContext(ctx).Omit("User", "Recipe", "Author").Create(t.model(userID, targetID)).Error
	err = translate(err, t.duplicate, nil)
	metrics.RelationToggles.WithLabelValues(t.name, "add", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Str("relation", t.name).Str("target_id", targetID.String()).Msg("relation added")
	return nil
}

func (s *RelationService) remove(ctx context.Context, t toggle, userID, targetID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND "+t.column+" = ?", userID, targetID).
		Delete(t.model(uuid.Nil, uuid.Nil))

	err := result.Error
	if err == nil && result.RowsAffected == 0 {
		err = t.missing
	}
	metrics.RelationToggles.WithLabelValues(t.name, "remove", metrics.Outcome(err)).Inc()
	return err
}

func (s *RelationService) recipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, translate(err, nil, ErrRecipeNotFound)
	}
	return &recipe, nil
}

// AddFavorite marks a recipe as favorite and returns it.
func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, favoriteToggle, userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	return s.remove(ctx, favoriteToggle, userID, recipeID)
}

// AddToCart puts a recipe into the user's shopping cart and returns it.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, cartToggle, userID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	return s.remove(ctx, cartToggle, userID, recipeID)
}

// Subscribe makes userID follow authorID. Following yourself is always
// rejected, before any lookup.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		metrics.RelationToggles.WithLabelValues(subscriptionToggle.name, "add", "error").Inc()
		return ErrSelfSubscription
	}
	if err := s.userExists(ctx, authorID); err != nil {
		return err
	}
	return s.add(ctx, subscriptionToggle, userID, authorID)
}

func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if err := s.userExists(ctx, authorID); err != nil {
		return err
	}
	return s.remove(ctx, subscriptionToggle, userID, authorID)
}

func (s *RelationService) userExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FavoritedRecipes reports which of recipeIDs the user has favorited.
func (s *RelationService) FavoritedRecipes(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.members(ctx, &models.Favorite{}, "recipe_id", userID, recipeIDs)
}

// CartRecipes reports which of recipeIDs are in the user's cart.
func (s *RelationService) CartRecipes(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.members(ctx, &models.ShoppingCart{}, "recipe_id", userID, recipeIDs)
}

// SubscribedAuthors reports which of authorIDs the user follows.
func (s *RelationService) SubscribedAuthors(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return s.members(ctx, &models.Subscription{}, "author_id", userID, authorIDs)
}

func (s *RelationService) members(ctx context.Context, model interface{}, column string, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return set, nil
	}

	var found []uuid.UUID
	err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", column, err)
	}
	for _, id := range found {
		set[id] = true
	}
	return set, nil
}
