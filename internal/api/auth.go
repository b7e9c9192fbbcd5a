package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// AuthHandler serves registration, tokens, profiles and subscriptions
type AuthHandler struct {
	auth          service.IAuthService
	users         service.IUserService
	subscriptions service.ISubscriptionService
}

func NewAuthHandler(auth service.IAuthService, users service.IUserService, subscriptions service.ISubscriptionService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, subscriptions: subscriptions}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	token := router.Group("/auth/token")
	{
		token.POST("/login/", h.Login)
		token.POST("/logout/", required, h.Logout)
	}

	users := router.Group("/users")
	{
		users.POST("/", h.Register)
		users.GET("/", optional, h.ListUsers)
		users.GET("/me/", required, h.Me)
		users.POST("/set_password/", required, h.SetPassword)
		users.GET("/subscriptions/", required, h.ListSubscriptions)
		users.GET("/:id/", optional, h.GetUser)
		users.POST("/:id/subscribe/", required, h.Subscribe)
		users.DELETE("/:id/subscribe/", required, h.Unsubscribe)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badJSON())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newRegisteredUserResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badJSON())
		return
	}

	token, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AuthToken: token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		c.Error(service.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	user, err := h.users.Get(c.Request.Context(), userID, userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

func (h *AuthHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, service.MsgUserNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(badJSON())
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), middleware.UserID(c), &req); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) ListSubscriptions(c *gin.Context) {
	summaries, err := h.subscriptions.List(c.Request.Context(), middleware.UserID(c), recipesLimit(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newSubscriptionResponses(summaries))
}

func (h *AuthHandler) Subscribe(c *gin.Context) {
	id, err := pathID(c, service.MsgUserNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	summary, err := h.subscriptions.Subscribe(c.Request.Context(), middleware.UserID(c), id, recipesLimit(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionResponse(summary))
}

func (h *AuthHandler) Unsubscribe(c *gin.Context) {
	id, err := pathID(c, service.MsgUserNotFound)
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
