package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/types"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// TagService manages recipe tags. Lists are never paginated.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, translate(err, nil, ErrTagNotFound)
	}
	return &tag, nil
}

func (s *TagService) Create(ctx context.Context, in *types.TagWrite) (*models.Tag, error) {
	if !slugPattern.MatchString(in.Slug) {
		return nil, ErrInvalidSlug
	}
	tag := &models.Tag{Name: in.Name, Color: strings.ToUpper(in.Color), Slug: in.Slug}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, translate(err, ErrSlugTaken, nil)
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, id uuid.UUID, in *types.TagWrite) (*models.Tag, error) {
	if !slugPattern.MatchString(in.Slug) {
		return nil, ErrInvalidSlug
	}
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	color := strings.ToUpper(in.Color)
	if color == "" {
		color = tag.Color
	}
	err = s.db.WithContext(ctx).Model(tag).Updates(map[string]interface{}{
		"name":  in.Name,
		"color": color,
		"slug":  in.Slug,
	}).Error
	if err != nil {
		return nil, translate(err, ErrSlugTaken, nil)
	}
	return s.Get(ctx, id)
}

func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTagNotFound
		}
		return nil
	})
}

// IngredientService manages ingredients and their measurement units.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// Search returns ingredients whose name starts with prefix, ignoring case.
// An empty prefix returns every ingredient.
func (s *IngredientService) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Preload("Unit").Order("name")
	if prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).Preload("Unit").First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, translate(err, nil, ErrIngredientNotFound)
	}
	return &ingredient, nil
}

// Create adds an ingredient, creating its unit on first use.
func (s *IngredientService) Create(ctx context.Context, in *types.IngredientWrite) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit, err := EnsureUnit(tx, in.MeasurementUnit)
		if err != nil {
			return err
		}
		ingredient = models.Ingredient{Name: in.Name, UnitID: unit.ID, Unit: *unit}
		return tx.Omit("Unit").Create(&ingredient).Error
	})
	if err != nil {
		return nil, translate(err, ErrIngredientExists, nil)
	}
	return &ingredient, nil
}

func (s *IngredientService) Update(ctx context.Context, id uuid.UUID, in *types.IngredientWrite) (*models.Ingredient, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, "id = ?", id).Error; err != nil {
			return translate(err, nil, ErrIngredientNotFound)
		}
		unit, err := EnsureUnit(tx, in.MeasurementUnit)
		if err != nil {
			return err
		}
		return tx.Model(&ingredient).Updates(map[string]interface{}{
			"name":    in.Name,
			"unit_id": unit.ID,
		}).Error
	})
	if err != nil {
		return nil, translate(err, ErrIngredientExists, nil)
	}
	return s.Get(ctx, id)
}

// Delete removes an ingredient that no recipe uses.
func (s *IngredientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		used, err := exists(tx.Model(&models.RecipeIngredient{}).Where("ingredient_id = ?", id))
		if err != nil {
			return err
		}
		if used {
			return ErrIngredientInUse
		}
		result := tx.Delete(&models.Ingredient{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIngredientNotFound
		}
		return nil
	})
}

// EnsureUnit returns the unit with the given name, creating it if needed.
func EnsureUnit(tx *gorm.DB, name string) (*models.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &FieldError{Kind: ErrValidation, Field: "measurement_unit", Message: "unit name must not be empty"}
	}

	var unit models.Unit
	err := tx.Where("name = ?", name).First(&unit).Error
	if err == nil {
		return &unit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unit = models.Unit{Name: name}
	if err := tx.Create(&unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create unit %q: %w", name, err)
	}
	return &unit, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
