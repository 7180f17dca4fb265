package dataio_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/dataio"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/testhelpers"
)

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func reportFor(t *testing.T, reports []dataio.Report, table string) dataio.Report {
	t.Helper()
	for _, r := range reports {
		if r.Table == table {
			return r
		}
	}
	t.Fatalf("no report for table %s", table)
	return dataio.Report{}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	chef := testhelpers.CreateUser(t, db, "chef")
	fan := testhelpers.CreateUser(t, db, "fan")
	tag := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	eggs := testhelpers.CreateIngredient(t, db, "eggs", "pcs")
	recipe := testhelpers.CreateRecipe(t, db, chef, "Pie, \"homemade\"", []*models.Tag{tag},
		testhelpers.Item{Ingredient: flour, Amount: 250},
		testhelpers.Item{Ingredient: eggs, Amount: 2})
	testhelpers.AddFavorite(t, db, fan, recipe)
	testhelpers.AddToCart(t, db, fan, recipe)
	testhelpers.Subscribe(t, db, fan, chef)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]dataio.Mode{
		"":         dataio.Skip,
		"replace":  dataio.Replace,
		" Append ": dataio.Append,
		"skip":     dataio.Skip,
	} {
		got, err := dataio.ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := dataio.ParseMode("merge")
	assert.ErrorIs(t, err, dataio.ErrUnknownMode)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := testhelpers.NewSQLiteDB(t)
	seed(t, src)
	dir := t.TempDir()

	require.NoError(t, dataio.Export(ctx, src, dir))
	for _, name := range dataio.Tables() {
		assert.FileExists(t, filepath.Join(dir, name+".csv"))
	}
	tags, err := os.ReadFile(filepath.Join(dir, "tag.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tags), "id,name,color,slug\n"))
	users, err := os.ReadFile(filepath.Join(dir, "user.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(users), "id,username,email,first_name,last_name,password,is_staff,date_joined\n"))

	dst := testhelpers.NewSQLiteDB(t)
	reports, err := dataio.Import(ctx, dst, dir, dataio.Skip)
	require.NoError(t, err)
	require.Len(t, reports, len(dataio.Tables()))
	for table, want := range map[string]int{
		"tag": 1, "unit": 2, "ingredient": 2, "user": 2, "recipe": 1,
		"recipeingredient": 2, "recipetag": 1, "subscription": 1, "favorite": 1, "shoppingcart": 1,
	} {
		assert.Equal(t, dataio.Report{Table: table, Loaded: want}, reportFor(t, reports, table))
	}

	var recipe models.Recipe
	require.NoError(t, dst.Preload("Tags").Preload("Ingredients").First(&recipe).Error)
	assert.Equal(t, `Pie, "homemade"`, recipe.Name)
	assert.Len(t, recipe.Tags, 1)
	assert.Len(t, recipe.Ingredients, 2)

	var chef models.User
	require.NoError(t, dst.First(&chef, "username = ?", "chef").Error)
	assert.NotEmpty(t, chef.PasswordHash)

	t.Run("skip leaves populated tables alone", func(t *testing.T) {
		reports, err := dataio.Import(ctx, dst, dir, dataio.Skip)
		require.NoError(t, err)
		for _, r := range reports {
			assert.True(t, r.Skipped, r.Table)
			assert.Zero(t, r.Loaded, r.Table)
		}
	})

	t.Run("append ignores existing rows", func(t *testing.T) {
		reports, err := dataio.Import(ctx, dst, dir, dataio.Append)
		require.NoError(t, err)
		for _, r := range reports {
			assert.Zero(t, r.Loaded, r.Table)
			assert.Zero(t, r.Invalid, r.Table)
		}
		assert.Equal(t, int64(2), count(t, dst, &models.User{}))
	})

	t.Run("replace reloads everything", func(t *testing.T) {
		testhelpers.CreateTag(t, dst, "extra")

		reports, err := dataio.Import(ctx, dst, dir, dataio.Replace)
		require.NoError(t, err)
		assert.Equal(t, 1, reportFor(t, reports, "tag").Loaded)
		assert.Equal(t, int64(1), count(t, dst, &models.Tag{}))
		assert.Equal(t, int64(2), count(t, dst, &models.RecipeIngredient{}))
	})
}

func TestImportRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	dir := t.TempDir()

	writeFile(t, dir, "tag.csv", "id,name,color,slug\n"+
		"0b6f4b5e-7d0e-4c55-9d8e-8f0a1f7c2a01,Dinner,#FF0000,dinner\n"+
		"0b6f4b5e-7d0e-4c55-9d8e-8f0a1f7c2a02,Bad,#FF0000,bad slug\n"+
		"not-a-uuid,Lunch,#00FF00,lunch\n")
	writeFile(t, dir, "recipe.csv", "id,author,name,text,image,cooking_time,pub_date\n"+
		"0b6f4b5e-7d0e-4c55-9d8e-8f0a1f7c2a03,0b6f4b5e-7d0e-4c55-9d8e-8f0a1f7c2a04,Soup,Boil.,,15,2024-03-01T09:30:00Z\n")

	reports, err := dataio.Import(ctx, db, dir, dataio.Skip)
	require.NoError(t, err)

	assert.Equal(t, dataio.Report{Table: "tag", Loaded: 1, Invalid: 2}, reportFor(t, reports, "tag"))
	assert.Equal(t, dataio.Report{Table: "recipe", Invalid: 1}, reportFor(t, reports, "recipe"), "unknown author")
	assert.True(t, reportFor(t, reports, "unit").Skipped, "no file")
	assert.Equal(t, int64(1), count(t, db, &models.Tag{}))
}

func TestLoadIngredients(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	const file = "ingredient,unit\nflour,g\nsugar,g\nmilk,ml\n,g\nflour,g\n"

	report, err := dataio.LoadIngredients(ctx, db, strings.NewReader(file), dataio.Skip)
	require.NoError(t, err)
	assert.Equal(t, dataio.Report{Table: "ingredient", Loaded: 3, Invalid: 1}, report)
	assert.Equal(t, int64(2), count(t, db, &models.Unit{}))

	report, err = dataio.LoadIngredients(ctx, db, strings.NewReader(file), dataio.Skip)
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	report, err = dataio.LoadIngredients(ctx, db, strings.NewReader("ingredient,unit\nflour,g\nsalt,g\n"), dataio.Append)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, int64(4), count(t, db, &models.Ingredient{}))

	chef := testhelpers.CreateUser(t, db, "chef")
	var flour models.Ingredient
	require.NoError(t, db.Preload("Unit").First(&flour, "name = ?", "flour").Error)
	testhelpers.CreateRecipe(t, db, chef, "Bread", nil, testhelpers.Item{Ingredient: &flour, Amount: 500})

	report, err = dataio.LoadIngredients(ctx, db, strings.NewReader("ingredient,unit\nrye flour,g\n"), dataio.Replace)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, int64(1), count(t, db, &models.Ingredient{}))
	assert.Zero(t, count(t, db, &models.RecipeIngredient{}))
}

func TestLoadTags(t *testing.T) {
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		db := testhelpers.NewSQLiteDB(t)
		path := writeFile(t, t.TempDir(), "tags.json", `[
			{"name": "Breakfast", "color": "#e26c2d", "slug": "breakfast"},
			{"name": "Dinner", "slug": "dinner"},
			{"name": "Broken", "color": "orange", "slug": "broken"}
		]`)

		report, err := dataio.LoadTagsFile(ctx, db, path, dataio.Skip)
		require.NoError(t, err)
		assert.Equal(t, dataio.Report{Table: "tag", Loaded: 2, Invalid: 1}, report)

		var breakfast, dinner models.Tag
		require.NoError(t, db.First(&breakfast, "slug = ?", "breakfast").Error)
		require.NoError(t, db.First(&dinner, "slug = ?", "dinner").Error)
		assert.Equal(t, "#E26C2D", breakfast.Color)
		assert.Equal(t, models.DefaultTagColor, dinner.Color)
	})

	t.Run("csv replace unlinks recipes", func(t *testing.T) {
		db := testhelpers.NewSQLiteDB(t)
		chef := testhelpers.CreateUser(t, db, "chef")
		old := testhelpers.CreateTag(t, db, "old")
		testhelpers.CreateRecipe(t, db, chef, "Soup", []*models.Tag{old})
		path := writeFile(t, t.TempDir(), "tags.csv", "name,color,slug\nLunch,#00FF00,lunch\nLunch again,#00FF00,lunch\n")

		report, err := dataio.LoadTagsFile(ctx, db, path, dataio.Replace)
		require.NoError(t, err)
		assert.Equal(t, dataio.Report{Table: "tag", Loaded: 1}, report)
		assert.Equal(t, int64(1), count(t, db, &models.Tag{}))
		assert.Zero(t, count(t, db, &models.RecipeTag{}))
	})

	t.Run("malformed json", func(t *testing.T) {
		db := testhelpers.NewSQLiteDB(t)
		_, err := dataio.LoadTagsJSON(ctx, db, strings.NewReader(`{"name": "x"}`), dataio.Skip)
		assert.Error(t, err)
	})
}

func TestSeedUsers(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	testhelpers.CreateUser(t, db, "johndoe")

	_, err := dataio.SeedUsers(ctx, db, dataio.DemoUsers, "password")
	assert.Error(t, err, "weak password")

	report, err := dataio.SeedUsers(ctx, db, dataio.DemoUsers, "plum-tractor-velvet-42")
	require.NoError(t, err)
	assert.Equal(t, dataio.Report{Table: "user", Loaded: 3}, report)

	var admin models.User
	require.NoError(t, db.First(&admin, "username = ?", "admin").Error)
	assert.True(t, admin.IsStaff)
	assert.Equal(t, int64(4), count(t, db, &models.User{}))
}
