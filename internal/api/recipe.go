package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes   service.IRecipeService
	relations service.IRelationService
	auth      middleware.TokenValidator
	limiter   *middleware.RateLimiter
}

func NewRecipeHandler(recipes service.IRecipeService, relations service.IRelationService, auth middleware.TokenValidator, limiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		auth:      auth,
		limiter:   limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	create := []gin.HandlerFunc{required}
	if h.limiter != nil {
		create = append(create, h.limiter.RateLimitMiddleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", middleware.OptionalAuth(h.auth), h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", required, h.DownloadShoppingCart)
		recipes.GET("/:id/", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.PATCH("/:id/", required, h.UpdateRecipe)
		recipes.DELETE("/:id/", required, h.DeleteRecipe)
		recipes.POST("/:id/favorite/", required, h.addLink(service.LinkFavorite))
		recipes.DELETE("/:id/favorite/", required, h.removeLink(service.LinkFavorite))
		recipes.POST("/:id/shopping_cart/", required, h.addLink(service.LinkCart))
		recipes.DELETE("/:id/shopping_cart/", required, h.removeLink(service.LinkCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter := types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      truthy(c.Query("is_favorited")),
		IsInShoppingCart: truthy(c.Query("is_in_shopping_cart")),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.Error(&service.ValidationError{Field: "author", Message: service.Format(service.MsgNotInteger)})
			return
		}
		id := uint(author)
		filter.AuthorID = &id
	}

	recipes, err := h.recipes.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponses(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := pathID(c, service.MsgRecipeNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badJSON())
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := pathID(c, service.MsgRecipeNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badJSON())
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := pathID(c, service.MsgRecipeNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addLink(kind service.LinkKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, service.MsgRecipeNotFound)
		if err != nil {
			c.Error(err)
			return
		}
		recipe, err := h.relations.Add(c.Request.Context(), kind, middleware.UserID(c), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, newShortRecipeResponse(recipe))
	}
}

func (h *RecipeHandler) removeLink(kind service.LinkKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, service.MsgRecipeNotFound)
		if err != nil {
			c.Error(err)
			return
		}
		if err := h.relations.Remove(c.Request.Context(), kind, middleware.UserID(c), id); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.recipes.ShoppingList(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+service.ShoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.FormatShoppingList(items)))
}
