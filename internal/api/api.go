package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles what the HTTP handlers depend on
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Subscriptions *service.SubscriptionService
	Catalog       *service.CatalogService
	Recipes       *service.RecipeService
	Relations     *service.RelationService
	// RecipeLimiter is optional; without it recipe creation is unlimited
	RecipeLimiter *middleware.RateLimiter
}

// SetupAPI registers every /api route on the router
func SetupAPI(router *gin.Engine, svc Services) {
	api := router.Group("/api")
	{
		NewAuthHandler(svc.Auth, svc.Users, svc.Subscriptions).RegisterRoutes(api)
		NewCatalogHandler(svc.Catalog).RegisterRoutes(api)
		NewRecipeHandler(svc.Recipes, svc.Relations, svc.Auth, svc.RecipeLimiter).RegisterRoutes(api)
	}
}
