package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/metrics"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/types"
)

// RecipeFilter narrows a recipe listing. The relation filters only apply to
// an authenticated viewer; for anyone else they match nothing.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService struct {
	db       *gorm.DB
	images   ImageStore
	pageSize int
}

func NewRecipeService(db *gorm.DB, images ImageStore, pageSize int) *RecipeService {
	return &RecipeService{db: db, images: images, pageSize: pageSize}
}

// validateComposition checks a write request in a fixed order so that the
// first failing rule decides the reported error.
func validateComposition(in *types.RecipeWrite) error {
	if len(in.Tags) == 0 {
		return ErrNoTags
	}
	seenTags := make(map[uuid.UUID]struct{}, len(in.Tags))
	for _, id := range in.Tags {
		if _, dup := seenTags[id]; dup {
			return ErrDuplicateTags
		}
		seenTags[id] = struct{}{}
	}

	if len(in.Ingredients) == 0 {
		return ErrNoIngredients
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return ErrDuplicateIngredients
		}
		seenIngredients[item.ID] = struct{}{}
	}

	for _, item := range in.Ingredients {
		if item.Amount < models.MinAmount || item.Amount > models.MaxAmount {
			return ErrAmountRange
		}
	}
	if in.CookingTime < models.MinCookingTime || in.CookingTime > models.MaxCookingTime {
		return ErrCookingTimeRange
	}
	return nil
}

// Create validates the request and stores the recipe with its tags and
// ingredient rows in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	recipe, err := s.create(ctx, authorID, in)
	metrics.RecipeMutations.WithLabelValues("create", metrics.Outcome(err)).Inc()
	return recipe, err
}

func (s *RecipeService) create(ctx context.Context, authorID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	if err := validateComposition(in); err != nil {
		return nil, err
	}
	if in.Image == "" {
		return nil, ErrImageRequired
	}

	key, err := s.images.Save(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        in.Name,
		AuthorID:    authorID,
		Text:        in.Text,
		Image:       key,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, in.Tags)
		if err != nil {
			return err
		}
		if err := resolveIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return compose(tx, &recipe, tags, in.Ingredients)
	})
	if err != nil {
		discardImage(ctx, s.images, key)
		return nil, err
	}

	logging.Ctx(ctx).Debug().Str("recipe_id", recipe.ID.String()).Msg("recipe created")
	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's attributes and its complete tag and
// ingredient sets. Only the author may update a recipe.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	recipe, err := s.update(ctx, actorID, recipeID, in)
	metrics.RecipeMutations.WithLabelValues("update", metrics.Outcome(err)).Inc()
	return recipe, err
}

func (s *RecipeService) update(ctx context.Context, actorID, recipeID uuid.UUID, in *types.RecipeWrite) (*models.Recipe, error) {
	if _, err := s.authorize(s.db.WithContext(ctx), actorID, recipeID); err != nil {
		return nil, err
	}
	if err := validateComposition(in); err != nil {
		return nil, err
	}

	var newKey string
	if in.Image != "" {
		key, err := s.images.Save(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newKey = key
	}

	var oldKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.authorize(forUpdate(tx), actorID, recipeID)
		if err != nil {
			return err
		}
		tags, err := resolveTags(tx, in.Tags)
		if err != nil {
			return err
		}
		if err := resolveIngredients(tx, in.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if newKey != "" {
			oldKey = recipe.Image
			updates["image"] = newKey
		}
		if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return compose(tx, recipe, tags, in.Ingredients)
	})
	if err != nil {
		if newKey != "" {
			discardImage(ctx, s.images, newKey)
		}
		return nil, err
	}
	if oldKey != "" {
		discardImage(ctx, s.images, oldKey)
	}

	logging.Ctx(ctx).Debug().Str("recipe_id", recipeID.String()).Msg("recipe updated")
	return s.Get(ctx, recipeID)
}

// Delete removes a recipe owned by actorID together with its image.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.authorize(tx, actorID, recipeID)
		if err != nil {
			return err
		}
		image = recipe.Image

		for _, model := range []interface{}{
			&models.RecipeIngredient{},
			&models.RecipeTag{},
			&models.Favorite{},
			&models.ShoppingCart{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete %T rows: %w", model, err)
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
	metrics.RecipeMutations.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	discardImage(ctx, s.images, image)
	return nil
}

// Get loads a recipe with its author, tags and ingredients.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, nil, ErrRecipeNotFound)
	}
	return &recipe, nil
}

// List returns one page of recipes, newest first, and the total count.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, filter RecipeFilter, page PageRequest) ([]models.Recipe, int64, error) {
	page = page.normalize(s.pageSize)
	db := s.db.WithContext(ctx)

	if (filter.IsFavorited || filter.IsInShoppingCart) && viewer == nil {
		return []models.Recipe{}, 0, nil
	}

	scope := func(q *gorm.DB) *gorm.DB {
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
		}
		if filter.IsFavorited {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *viewer))
		}
		if filter.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCart{}).
				Select("recipe_id").Where("user_id = ?", *viewer))
		}
		return q
	}

	var total int64
	if err := db.Model(&models.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := preloadRecipe(db).Scopes(scope).
		Order("recipes.pub_date DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

func (s *RecipeService) authorize(db *gorm.DB, actorID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, translate(err, nil, ErrRecipeNotFound)
	}
	if recipe.AuthorID != actorID {
		return nil, ErrNotAuthor
	}
	return &recipe, nil
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients.Ingredient.Unit")
}

// forUpdate takes a row lock where the dialect supports it; SQLite
// already serialises writers.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// resolveTags loads every referenced tag or fails with a field error naming
// the first missing id.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(ids) {
		found := make(map[uuid.UUID]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fieldError(ErrNotFound, "tags", "tag %s does not exist", id)
			}
		}
	}
	return tags, nil
}

func resolveIngredients(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var existing []uuid.UUID
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("failed to load ingredients: %w", err)
	}
	if len(existing) == len(ids) {
		return nil
	}

	found := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	for _, id := range ids {
		if !found[id] {
			return fieldError(ErrNotFound, "ingredients", "ingredient %s does not exist", id)
		}
	}
	return nil
}

// compose replaces the recipe's tag set and ingredient rows. Prior
// associations are cleared first; the result is exactly the given sets.
func compose(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag, items []types.IngredientAmount) error {
	if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}

	links := make([]models.RecipeTag, len(tags))
	for i, tag := range tags {
		links[i] = models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link tags: %w", err)
	}

	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateIngredients
		}
		return fmt.Errorf("failed to add ingredients: %w", err)
	}
	return nil
}
