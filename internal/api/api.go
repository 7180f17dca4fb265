package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipedia/backend/internal/middleware"
	"github.com/pageza/recipedia/backend/internal/service"
)

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Recipes     service.IRecipeService
	Relations   service.IRelationService
	Shopping    service.IShoppingService
	Tags        service.ITagService
	Ingredients service.IIngredientService
	Projector   *service.Projector

	// PageSize is the default ?limit of paginated lists.
	PageSize int

	// RecipeCreateLimit runs before recipe creation. Nil disables it.
	RecipeCreateLimit gin.HandlerFunc
	// HealthCheck reports whether the backing stores are reachable.
	HealthCheck func(ctx context.Context) error

	// MediaDir is served under MediaURL when images are stored locally.
	MediaDir string
	MediaURL string
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(deps Dependencies, corsOrigins []string) *gin.Engine {
	configureValidator()

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.ErrorHandler(),
		middleware.CORS(corsOrigins),
	)

	SetupAPI(router, deps)
	return router
}

// SetupAPI registers the operational endpoints and the /api routes.
func SetupAPI(router *gin.Engine, deps Dependencies) {
	router.GET("/health", healthHandler(deps.HealthCheck))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.MediaDir != "" && strings.HasPrefix(deps.MediaURL, "/") {
		router.Static(deps.MediaURL, deps.MediaDir)
	}

	register(router.Group("/api"), deps, routes(deps))
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "errors": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
