package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// LinkKind selects the user/recipe link table a toggle works on
type LinkKind string

const (
	LinkFavorite LinkKind = "favorite"
	LinkCart     LinkKind = "cart"
)

func (k LinkKind) model() interface{} {
	if k == LinkCart {
		return &models.Cart{}
	}
	return &models.Favorite{}
}

func (k LinkKind) row(userID, recipeID uint) interface{} {
	if k == LinkCart {
		return &models.Cart{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (k LinkKind) duplicate() MessageKind {
	if k == LinkCart {
		return MsgCartDuplicate
	}
	return MsgFavoriteDuplicate
}

func (k LinkKind) missing() MessageKind {
	if k == LinkCart {
		return MsgCartMissing
	}
	return MsgFavoriteMissing
}

// RelationService toggles favorites and shopping cart entries
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// Add links the recipe to the user and returns the recipe. The recipe must
// exist and must not already be linked.
func (s *RelationService) Add(ctx context.Context, kind LinkKind, userID, recipeID uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Take(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgRecipeNotFound, recipeID)
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	var existing int64
	if err := db.Model(kind.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", kind, err)
	}
	if existing > 0 {
		return nil, conflict(kind.duplicate(), recipe.Name)
	}

	if err := db.Create(kind.row(userID, recipeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(kind.duplicate(), recipe.Name)
		}
		return nil, fmt.Errorf("failed to add %s: %w", kind, err)
	}

	metrics.LinkChangesTotal.WithLabelValues(string(kind), "add").Inc()
	return &recipe, nil
}

// Remove deletes the link. Removing a link that does not exist is an error.
func (s *RelationService) Remove(ctx context.Context, kind LinkKind, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.Select("id", "name").Take(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(MsgRecipeNotFound, recipeID)
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}

	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(kind.model())
	if res.Error != nil {
		return fmt.Errorf("failed to remove %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(kind.missing(), recipe.Name)
	}

	metrics.LinkChangesTotal.WithLabelValues(string(kind), "remove").Inc()
	return nil
}
