package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for identity operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error
}

// IUserService defines the interface for reading user profiles
type IUserService interface {
	List(ctx context.Context, viewerID uint) ([]models.User, error)
	Get(ctx context.Context, viewerID, userID uint) (*models.User, error)
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*AuthorSummary, error)
	Unsubscribe(ctx context.Context, subscriberID, authorID uint) error
	List(ctx context.Context, subscriberID uint, recipesLimit int) ([]AuthorSummary, error)
}

// ICatalogService defines the interface for tag and ingredient reads
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, callerID, recipeID uint, req *types.RecipeRequest) (*models.Recipe, error)
	Delete(ctx context.Context, callerID, recipeID uint) error
	Get(ctx context.Context, viewerID, recipeID uint) (*models.Recipe, error)
	List(ctx context.Context, viewerID uint, filter types.RecipeFilter) ([]models.Recipe, error)
	ShoppingList(ctx context.Context, userID uint) ([]ShoppingItem, error)
}

// IRelationService defines the interface for favorite and cart toggles
type IRelationService interface {
	Add(ctx context.Context, kind LinkKind, userID, recipeID uint) (*models.Recipe, error)
	Remove(ctx context.Context, kind LinkKind, userID, recipeID uint) error
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IRelationService     = (*RelationService)(nil)
	_ CatalogLookup        = (*CatalogService)(nil)
)
