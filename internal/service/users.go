package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// UserService reads user profiles annotated with the viewer's subscription
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) annotated(ctx context.Context, viewerID uint) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if viewerID == 0 {
		return query.Select("users.*")
	}
	return query.Select("users.*, "+subscribedExpr+" AS is_subscribed", viewerID)
}

// List returns all users ordered by username
func (s *UserService) List(ctx context.Context, viewerID uint) ([]models.User, error) {
	var users []models.User
	if err := s.annotated(ctx, viewerID).Order("users.username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get returns one user annotated for the viewer
func (s *UserService) Get(ctx context.Context, viewerID, userID uint) (*models.User, error) {
	var user models.User
	if err := s.annotated(ctx, viewerID).Where("users.id = ?", userID).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
