package dataio

import (
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/models"
)

type tagRow struct {
	ID    uuid.UUID `csv:"id" validate:"required"`
	Name  string    `csv:"name" validate:"required,max=200"`
	Color string    `csv:"color" validate:"omitempty,hexcolor,len=7"`
	Slug  string    `csv:"slug" validate:"required,max=200,slug"`
}

type unitRow struct {
	ID   uuid.UUID `csv:"id" validate:"required"`
	Name string    `csv:"name" validate:"required,max=200"`
}

type ingredientRow struct {
	ID   uuid.UUID `csv:"id" validate:"required"`
	Name string    `csv:"name" validate:"required,max=200"`
	Unit uuid.UUID `csv:"unit" validate:"required"`
}

type userRow struct {
	ID         uuid.UUID `csv:"id" validate:"required"`
	Username   string    `csv:"username" validate:"required,max=150"`
	Email      string    `csv:"email" validate:"required,email,max=254"`
	FirstName  string    `csv:"first_name" validate:"required,max=150"`
	LastName   string    `csv:"last_name" validate:"required,max=150"`
	Password   string    `csv:"password" validate:"required"`
	IsStaff    bool      `csv:"is_staff"`
	DateJoined timestamp `csv:"date_joined"`
}

type recipeRow struct {
	ID          uuid.UUID `csv:"id" validate:"required"`
	Author      uuid.UUID `csv:"author" validate:"required"`
	Name        string    `csv:"name" validate:"required,max=200"`
	Text        string    `csv:"text" validate:"required"`
	Image       string    `csv:"image" validate:"max=255"`
	CookingTime int       `csv:"cooking_time" validate:"min=1,max=32000"`
	PubDate     timestamp `csv:"pub_date"`
}

type recipeIngredientRow struct {
	ID         uuid.UUID `csv:"id" validate:"required"`
	Recipe     uuid.UUID `csv:"recipe" validate:"required"`
	Ingredient uuid.UUID `csv:"ingredient" validate:"required"`
	Amount     int       `csv:"amount" validate:"min=1,max=32000"`
}

type recipeTagRow struct {
	Recipe uuid.UUID `csv:"recipe" validate:"required"`
	Tag    uuid.UUID `csv:"tag" validate:"required"`
}

// subscriptionRow also fails validation when User and Author match, see
// validateSubscription.
type subscriptionRow struct {
	ID     uuid.UUID `csv:"id" validate:"required"`
	User   uuid.UUID `csv:"user" validate:"required"`
	Author uuid.UUID `csv:"author" validate:"required"`
}

func validateSubscription(sl validator.StructLevel) {
	row := sl.Current().Interface().(subscriptionRow)
	if row.User == row.Author {
		sl.ReportError(row.Author, "Author", "author", "nefield", "User")
	}
}

// userRecipeRow is the shape of both favorite and shoppingcart.
type userRecipeRow struct {
	ID     uuid.UUID `csv:"id" validate:"required"`
	User   uuid.UUID `csv:"user" validate:"required"`
	Recipe uuid.UUID `csv:"recipe" validate:"required"`
}

// table binds a CSV file to a database table.
type table struct {
	name  string
	model interface{}
	// export writes every row of the table to w and returns the row count.
	export func(ctx context.Context, db *gorm.DB, w io.Writer) (int, error)
	// parse decodes a CSV file into models ready to insert. The slice has
	// one entry per data row; rows that failed to convert or validate are
	// nil and their error is in bad.
	parse func(r io.Reader, v *validator.Validate) (records []interface{}, bad map[int]error, err error)
}

// tables are listed in dependency order: a table only references tables
// before it.
var tables = []table{
	newTable("tag", &models.Tag{},
		func(m models.Tag) tagRow { return tagRow{m.ID, m.Name, m.Color, m.Slug} },
		func(r tagRow) *models.Tag {
			return &models.Tag{ID: r.ID, Name: r.Name, Color: r.Color, Slug: r.Slug}
		}),
	newTable("unit", &models.Unit{},
		func(m models.Unit) unitRow { return unitRow{m.ID, m.Name} },
		func(r unitRow) *models.Unit { return &models.Unit{ID: r.ID, Name: r.Name} }),
	newTable("ingredient", &models.Ingredient{},
		func(m models.Ingredient) ingredientRow { return ingredientRow{m.ID, m.Name, m.UnitID} },
		func(r ingredientRow) *models.Ingredient {
			return &models.Ingredient{ID: r.ID, Name: r.Name, UnitID: r.Unit}
		}),
	newTable("user", &models.User{},
		func(m models.User) userRow {
			return userRow{m.ID, m.Username, m.Email, m.FirstName, m.LastName, m.PasswordHash, m.IsStaff, timestamp(m.CreatedAt)}
		},
		func(r userRow) *models.User {
			return &models.User{
				ID:           r.ID,
				CreatedAt:    time.Time(r.DateJoined),
				Username:     r.Username,
				Email:        r.Email,
				FirstName:    r.FirstName,
				LastName:     r.LastName,
				PasswordHash: r.Password,
				IsStaff:      r.IsStaff,
			}
		}),
	newTable("recipe", &models.Recipe{},
		func(m models.Recipe) recipeRow {
			return recipeRow{m.ID, m.AuthorID, m.Name, m.Text, m.Image, m.CookingTime, timestamp(m.PubDate)}
		},
		func(r recipeRow) *models.Recipe {
			return &models.Recipe{
				ID:          r.ID,
				AuthorID:    r.Author,
				Name:        r.Name,
				Text:        r.Text,
				Image:       r.Image,
				CookingTime: r.CookingTime,
				PubDate:     time.Time(r.PubDate),
			}
		}),
	newTable("recipeingredient", &models.RecipeIngredient{},
		func(m models.RecipeIngredient) recipeIngredientRow {
			return recipeIngredientRow{m.ID, m.RecipeID, m.IngredientID, m.Amount}
		},
		func(r recipeIngredientRow) *models.RecipeIngredient {
			return &models.RecipeIngredient{ID: r.ID, RecipeID: r.Recipe, IngredientID: r.Ingredient, Amount: r.Amount}
		}),
	newTable("recipetag", &models.RecipeTag{},
		func(m models.RecipeTag) recipeTagRow { return recipeTagRow{m.RecipeID, m.TagID} },
		func(r recipeTagRow) *models.RecipeTag { return &models.RecipeTag{RecipeID: r.Recipe, TagID: r.Tag} }),
	newTable("subscription", &models.Subscription{},
		func(m models.Subscription) subscriptionRow { return subscriptionRow{m.ID, m.UserID, m.AuthorID} },
		func(r subscriptionRow) *models.Subscription {
			return &models.Subscription{ID: r.ID, UserID: r.User, AuthorID: r.Author}
		}),
	newTable("favorite", &models.Favorite{},
		func(m models.Favorite) userRecipeRow { return userRecipeRow{m.ID, m.UserID, m.RecipeID} },
		func(r userRecipeRow) *models.Favorite {
			return &models.Favorite{ID: r.ID, UserID: r.User, RecipeID: r.Recipe}
		}),
	newTable("shoppingcart", &models.ShoppingCart{},
		func(m models.ShoppingCart) userRecipeRow { return userRecipeRow{m.ID, m.UserID, m.RecipeID} },
		func(r userRecipeRow) *models.ShoppingCart {
			return &models.ShoppingCart{ID: r.ID, UserID: r.User, RecipeID: r.Recipe}
		}),
}

func newTable[M any, R any](name string, model *M, toRow func(M) R, fromRow func(R) *M) table {
	return table{
		name:  name,
		model: model,
		export: func(ctx context.Context, db *gorm.DB, w io.Writer) (int, error) {
			var records []M
			if err := db.WithContext(ctx).Find(&records).Error; err != nil {
				return 0, err
			}
			rows := make([]R, len(records))
			for i, m := range records {
				rows[i] = toRow(m)
			}
			return len(rows), writeRows(w, rows)
		},
		parse: func(r io.Reader, v *validator.Validate) ([]interface{}, map[int]error, error) {
			rows, bad, err := readRows[R](r)
			if err != nil {
				return nil, nil, err
			}
			records := make([]interface{}, len(rows))
			for i := range rows {
				if _, ok := bad[i]; ok {
					continue
				}
				if err := v.Struct(&rows[i]); err != nil {
					bad[i] = err
					continue
				}
				records[i] = fromRow(rows[i])
			}
			return records, bad, nil
		},
	}
}

// Tables returns the table names in import order.
func Tables() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names
}
