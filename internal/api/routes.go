package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipedia/backend/internal/middleware"
)

// access is the authentication a route requires.
type access int

const (
	public access = iota
	optional
	authenticated
	staff
)

type route struct {
	method  string
	path    string
	access  access
	handler gin.HandlerFunc
	extra   []gin.HandlerFunc
}

// routes is the registration table for every /api endpoint.
func routes(deps Dependencies) []route {
	auth := &AuthHandler{auth: deps.Auth}
	users := &UserHandler{
		users:     deps.Users,
		relations: deps.Relations,
		projector: deps.Projector,
		pageSize:  deps.PageSize,
	}
	recipes := &RecipeHandler{
		recipes:   deps.Recipes,
		relations: deps.Relations,
		shopping:  deps.Shopping,
		projector: deps.Projector,
		pageSize:  deps.PageSize,
	}
	tags := &TagHandler{tags: deps.Tags}
	ingredients := &IngredientHandler{ingredients: deps.Ingredients}

	var createLimit []gin.HandlerFunc
	if deps.RecipeCreateLimit != nil {
		createLimit = append(createLimit, deps.RecipeCreateLimit)
	}

	return []route{
		{method: "POST", path: "/auth/token/login", access: public, handler: auth.Login},
		{method: "POST", path: "/auth/token/logout", access: authenticated, handler: auth.Logout},

		{method: "POST", path: "/users", access: public, handler: users.Register},
		{method: "GET", path: "/users", access: optional, handler: users.List},
		{method: "GET", path: "/users/me", access: authenticated, handler: users.Me},
		{method: "POST", path: "/users/set_password", access: authenticated, handler: users.SetPassword},
		{method: "GET", path: "/users/subscriptions", access: authenticated, handler: users.Subscriptions},
		{method: "GET", path: "/users/:id", access: optional, handler: users.Get},
		{method: "POST", path: "/users/:id/subscribe", access: authenticated, handler: users.Subscribe},
		{method: "DELETE", path: "/users/:id/subscribe", access: authenticated, handler: users.Unsubscribe},

		{method: "GET", path: "/tags", access: public, handler: tags.List},
		{method: "GET", path: "/tags/:id", access: public, handler: tags.Get},
		{method: "POST", path: "/tags", access: staff, handler: tags.Create},
		{method: "PATCH", path: "/tags/:id", access: staff, handler: tags.Update},
		{method: "DELETE", path: "/tags/:id", access: staff, handler: tags.Delete},

		{method: "GET", path: "/ingredients", access: public, handler: ingredients.List},
		{method: "GET", path: "/ingredients/:id", access: public, handler: ingredients.Get},
		{method: "POST", path: "/ingredients", access: staff, handler: ingredients.Create},
		{method: "PATCH", path: "/ingredients/:id", access: staff, handler: ingredients.Update},
		{method: "DELETE", path: "/ingredients/:id", access: staff, handler: ingredients.Delete},

		{method: "GET", path: "/recipes", access: optional, handler: recipes.List},
		{method: "POST", path: "/recipes", access: authenticated, handler: recipes.Create, extra: createLimit},
		{method: "GET", path: "/recipes/download_shopping_cart", access: authenticated, handler: recipes.DownloadShoppingCart},
		{method: "GET", path: "/recipes/:id", access: optional, handler: recipes.Get},
		{method: "PATCH", path: "/recipes/:id", access: authenticated, handler: recipes.Update},
		{method: "PUT", path: "/recipes/:id", access: authenticated, handler: recipes.Update},
		{method: "DELETE", path: "/recipes/:id", access: authenticated, handler: recipes.Delete},
		{method: "POST", path: "/recipes/:id/favorite", access: authenticated, handler: recipes.AddFavorite},
		{method: "DELETE", path: "/recipes/:id/favorite", access: authenticated, handler: recipes.RemoveFavorite},
		{method: "POST", path: "/recipes/:id/shopping_cart", access: authenticated, handler: recipes.AddToCart},
		{method: "DELETE", path: "/recipes/:id/shopping_cart", access: authenticated, handler: recipes.RemoveFromCart},
	}
}

func register(group *gin.RouterGroup, deps Dependencies, table []route) {
	for _, r := range table {
		var chain []gin.HandlerFunc
		switch r.access {
		case optional:
			chain = append(chain, middleware.OptionalAuth(deps.Auth))
		case authenticated:
			chain = append(chain, middleware.AuthMiddleware(deps.Auth))
		case staff:
			chain = append(chain, middleware.AuthMiddleware(deps.Auth), middleware.RequireStaff(deps.Users))
		}
		chain = append(chain, r.extra...)
		chain = append(chain, r.handler)
		group.Handle(r.method, r.path, chain...)
	}
}
