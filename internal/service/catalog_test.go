package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/testhelpers"
	"github.com/pageza/recipedia/backend/internal/types"
)

func TestTagService(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewTagService(db)

	tag, err := svc.Create(ctx, &types.TagWrite{Name: "Breakfast", Slug: "breakfast"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTagColor, tag.Color)

	_, err = svc.Create(ctx, &types.TagWrite{Name: "Dinner", Color: "#49b64e", Slug: "dinner"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &types.TagWrite{Name: "Again", Slug: "breakfast"})
	assert.ErrorIs(t, err, service.ErrSlugTaken)

	_, err = svc.Create(ctx, &types.TagWrite{Name: "Bad", Slug: "no spaces"})
	assert.ErrorIs(t, err, service.ErrInvalidSlug)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "#49B64E", tags[1].Color)

	updated, err := svc.Update(ctx, tag.ID, &types.TagWrite{Name: "Brunch", Slug: "brunch"})
	require.NoError(t, err)
	assert.Equal(t, "Brunch", updated.Name)
	assert.Equal(t, models.DefaultTagColor, updated.Color)

	_, err = svc.Update(ctx, tag.ID, &types.TagWrite{Name: "Brunch", Slug: "dinner"})
	assert.ErrorIs(t, err, service.ErrSlugTaken)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrTagNotFound)
}

func TestTagService_DeleteUnlinksRecipes(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewTagService(db)

	author := testhelpers.CreateUser(t, db, "chef")
	keep := testhelpers.CreateTag(t, db, "keep")
	drop := testhelpers.CreateTag(t, db, "drop")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", []*models.Tag{keep, drop})

	require.NoError(t, svc.Delete(ctx, drop.ID))
	assert.ErrorIs(t, svc.Delete(ctx, drop.ID), service.ErrTagNotFound)

	var links []models.RecipeTag
	require.NoError(t, db.Where("recipe_id = ?", recipe.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, keep.ID, links[0].TagID)
}

func TestIngredientService_Search(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewIngredientService(db)

	for _, name := range []string{"Sugar", "salt", "sage", "basil", "s_special"} {
		testhelpers.CreateIngredient(t, db, name, "g")
	}

	names := func(items []models.Ingredient) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.Name
		}
		return out
	}

	found, err := svc.Search(ctx, "SA")
	require.NoError(t, err)
	assert.Equal(t, []string{"sage", "salt"}, names(found))
	assert.Equal(t, "g", found[0].Unit.Name)

	found, err = svc.Search(ctx, "s_")
	require.NoError(t, err)
	assert.Equal(t, []string{"s_special"}, names(found), "underscore is matched literally")

	found, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, found, 5)

	found, err = svc.Search(ctx, "pepper")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestIngredientService_SearchUnicode(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewIngredientService(db)

	for _, name := range []string{"Мука", "молоко", "Flour", "Éclair filling"} {
		testhelpers.CreateIngredient(t, db, name, "г")
	}

	for prefix, want := range map[string]string{
		"му":  "Мука",
		"Му":  "Мука",
		"МОЛ": "молоко",
		"éc":  "Éclair filling",
		"fl":  "Flour",
	} {
		found, err := svc.Search(ctx, prefix)
		require.NoError(t, err, prefix)
		require.Len(t, found, 1, prefix)
		assert.Equal(t, want, found[0].Name, prefix)
	}
}

func TestIngredientService_Write(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewIngredientService(db)

	flour, err := svc.Create(ctx, &types.IngredientWrite{Name: "flour", MeasurementUnit: "g"})
	require.NoError(t, err)
	sugar, err := svc.Create(ctx, &types.IngredientWrite{Name: "sugar", MeasurementUnit: "g"})
	require.NoError(t, err)
	assert.Equal(t, flour.UnitID, sugar.UnitID, "units are shared by name")

	_, err = svc.Create(ctx, &types.IngredientWrite{Name: "flour", MeasurementUnit: "cup"})
	require.NoError(t, err, "same name with another unit is a distinct ingredient")

	_, err = svc.Create(ctx, &types.IngredientWrite{Name: "flour", MeasurementUnit: "g"})
	assert.ErrorIs(t, err, service.ErrIngredientExists)

	updated, err := svc.Update(ctx, sugar.ID, &types.IngredientWrite{Name: "brown sugar", MeasurementUnit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "brown sugar", updated.Name)
	assert.Equal(t, "kg", updated.Unit.Name)

	_, err = svc.Update(ctx, uuid.New(), &types.IngredientWrite{Name: "x", MeasurementUnit: "g"})
	assert.ErrorIs(t, err, service.ErrIngredientNotFound)

	var units int64
	require.NoError(t, db.Model(&models.Unit{}).Count(&units).Error)
	assert.Equal(t, int64(3), units)
}

func TestIngredientService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewIngredientService(db)

	author := testhelpers.CreateUser(t, db, "chef")
	tag := testhelpers.CreateTag(t, db, "dinner")
	used := testhelpers.CreateIngredient(t, db, "flour", "g")
	unused := testhelpers.CreateIngredient(t, db, "saffron", "g")
	testhelpers.CreateRecipe(t, db, author, "Bread", []*models.Tag{tag}, testhelpers.Item{Ingredient: used, Amount: 1})

	assert.ErrorIs(t, svc.Delete(ctx, used.ID), service.ErrIngredientInUse)
	require.NoError(t, svc.Delete(ctx, unused.ID))
	assert.ErrorIs(t, svc.Delete(ctx, unused.ID), service.ErrIngredientNotFound)
}
