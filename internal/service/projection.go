package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/types"
)

// RelationLookup answers membership questions for one viewer, batched over
// a page of ids.
type RelationLookup interface {
	FavoritedRecipes(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CartRecipes(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	SubscribedAuthors(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ImageLocator turns a stored image key into a public URL.
type ImageLocator interface {
	URL(key string) string
}

// Projector builds the read shapes for a viewer. A nil viewer is anonymous:
// every relation flag is false and the lookup is never consulted.
type Projector struct {
	lookup RelationLookup
	images ImageLocator
}

func NewProjector(lookup RelationLookup, images ImageLocator) *Projector {
	return &Projector{lookup: lookup, images: images}
}

type recipeFlags struct {
	favorited  map[uuid.UUID]bool
	inCart     map[uuid.UUID]bool
	subscribed map[uuid.UUID]bool
}

func (p *Projector) flags(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) (recipeFlags, error) {
	var f recipeFlags
	if viewer == nil || len(recipes) == 0 {
		return f, nil
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seen := make(map[uuid.UUID]bool, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	var err error
	if f.favorited, err = p.lookup.FavoritedRecipes(ctx, *viewer, recipeIDs); err != nil {
		return f, err
	}
	if f.inCart, err = p.lookup.CartRecipes(ctx, *viewer, recipeIDs); err != nil {
		return f, err
	}
	if f.subscribed, err = p.lookup.SubscribedAuthors(ctx, *viewer, authorIDs); err != nil {
		return f, err
	}
	return f, nil
}

// Recipe projects a single recipe.
func (p *Projector) Recipe(ctx context.Context, viewer *uuid.UUID, recipe *models.Recipe) (types.RecipeRead, error) {
	out, err := p.Recipes(ctx, viewer, []models.Recipe{*recipe})
	if err != nil {
		return types.RecipeRead{}, err
	}
	return out[0], nil
}

// Recipes projects a page of recipes with at most three lookups.
func (p *Projector) Recipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeRead, error) {
	f, err := p.flags(ctx, viewer, recipes)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeRead, len(recipes))
	for i := range recipes {
		r := &recipes[i]

		tags := make([]types.TagRead, len(r.Tags))
		for j, t := range r.Tags {
			tags[j] = TagRead(t)
		}

		ingredients := make([]types.RecipeIngredientRead, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = types.RecipeIngredientRead{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.Unit.Name,
				Amount:          ri.Amount,
			}
		}
		sort.Slice(ingredients, func(a, b int) bool { return ingredients[a].Name < ingredients[b].Name })

		out[i] = types.RecipeRead{
			ID:               r.ID,
			Tags:             tags,
			Author:           userRead(&r.Author, f.subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      f.favorited[r.ID],
			IsInShoppingCart: f.inCart[r.ID],
			Name:             r.Name,
			Image:            p.images.URL(r.Image),
			Text:             r.FormattedText(),
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

// Minified projects the short recipe form. It carries no relation flags.
func (p *Projector) Minified(recipe *models.Recipe) types.RecipeMinified {
	return types.RecipeMinified{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       p.images.URL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// Users projects users with is_subscribed relative to the viewer.
func (p *Projector) Users(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserRead, error) {
	subscribed, err := p.subscribed(ctx, viewer, users)
	if err != nil {
		return nil, err
	}
	out := make([]types.UserRead, len(users))
	for i := range users {
		out[i] = userRead(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

// Subscriptions projects followed authors with their recipe previews.
func (p *Projector) Subscriptions(ctx context.Context, viewer *uuid.UUID, authors []AuthorSummary) ([]types.SubscriptionRead, error) {
	users := make([]models.User, len(authors))
	for i, a := range authors {
		users[i] = a.Author
	}
	subscribed, err := p.subscribed(ctx, viewer, users)
	if err != nil {
		return nil, err
	}

	out := make([]types.SubscriptionRead, len(authors))
	for i := range authors {
		a := &authors[i]
		recipes := make([]types.RecipeMinified, len(a.Recipes))
		for j := range a.Recipes {
			recipes[j] = p.Minified(&a.Recipes[j])
		}
		out[i] = types.SubscriptionRead{
			UserRead:     userRead(&a.Author, subscribed[a.Author.ID]),
			Recipes:      recipes,
			RecipesCount: a.RecipesCount,
		}
	}
	return out, nil
}

func (p *Projector) subscribed(ctx context.Context, viewer *uuid.UUID, users []models.User) (map[uuid.UUID]bool, error) {
	if viewer == nil || len(users) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return p.lookup.SubscribedAuthors(ctx, *viewer, ids)
}

func userRead(u *models.User, subscribed bool) types.UserRead {
	return types.UserRead{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// UserCreated is the registration response shape.
func UserCreated(u *models.User) types.UserCreated {
	return types.UserCreated{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func TagRead(t models.Tag) types.TagRead {
	return types.TagRead{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func IngredientRead(i models.Ingredient) types.IngredientRead {
	return types.IngredientRead{ID: i.ID, Name: i.Name, MeasurementUnit: i.Unit.Name}
}
