package testhelpers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "correct-horse-battery-staple"

var testPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// CreateUser inserts a user whose email is derived from username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "First" + username,
		LastName:     "Last" + username,
		PasswordHash: testPasswordHash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// CreateStaff inserts a staff user.
func CreateStaff(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	if err := db.Model(user).Update("is_staff", true).Error; err != nil {
		t.Fatalf("failed to promote %s: %v", username, err)
	}
	user.IsStaff = true
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: "Tag " + slug, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// CreateIngredient inserts an ingredient, creating its unit when missing.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	var u models.Unit
	if err := db.Where(models.Unit{Name: unit}).FirstOrCreate(&u).Error; err != nil {
		t.Fatalf("failed to create unit %s: %v", unit, err)
	}
	ingredient := &models.Ingredient{Name: name, UnitID: u.ID, Unit: u}
	if err := db.Omit("Unit").Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// Item pairs an ingredient with an amount for CreateRecipe.
type Item struct {
	Ingredient *models.Ingredient
	Amount     int
}

var recipeSeq atomic.Int64

// CreateRecipe inserts a recipe directly, bypassing composer validation.
// Each call gets a later pub_date than the previous one.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, items ...Item) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		Text:        "Mix.\nBake.",
		Image:       "recipes/images/" + uuid.NewString() + ".png",
		CookingTime: 30,
		PubDate:     time.Now().UTC().Add(time.Duration(recipeSeq.Add(1)) * time.Millisecond),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		for _, item := range items {
			row := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: item.Ingredient.ID, Amount: item.Amount}
			if err := tx.Omit("Ingredient").Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

// AddToCart inserts a shopping cart row directly.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	mustCreate(t, db, &models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID})
}

func AddFavorite(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	mustCreate(t, db, &models.Favorite{UserID: user.ID, RecipeID: recipe.ID})
}

func Subscribe(t *testing.T, db *gorm.DB, user, author *models.User) {
	t.Helper()
	mustCreate(t, db, &models.Subscription{UserID: user.ID, AuthorID: author.ID})
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Omit("User", "Recipe", "Author").Create(value).Error; err != nil {
		t.Fatalf("failed to create %T: %v", value, err)
	}
}
