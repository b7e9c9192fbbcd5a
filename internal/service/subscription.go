package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// AuthorSummary is a followed author with a preview of their recipes
type AuthorSummary struct {
	Author       models.User
	RecipesCount int64
	Recipes      []models.Recipe
}

// SubscriptionService manages who follows whom
type SubscriptionService struct {
	db      *gorm.DB
	users   *UserService
	recipes *RecipeService
}

func NewSubscriptionService(db *gorm.DB, users *UserService, recipes *RecipeService) *SubscriptionService {
	return &SubscriptionService{db: db, users: users, recipes: recipes}
}

// Subscribe follows the author. The author must exist, must not be the
// subscriber and must not already be followed.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*AuthorSummary, error) {
	author, err := s.users.Get(ctx, subscriberID, authorID)
	if err != nil {
		return nil, err
	}

	subscriber, err := s.users.Get(ctx, 0, subscriberID)
	if err != nil {
		return nil, err
	}
	if subscriberID == authorID {
		return nil, conflict(MsgSelfSubscription, subscriber.Username, author.Username)
	}
	if author.IsSubscribed {
		return nil, conflict(MsgSubscriptionDuplicate, author.Username)
	}

	link := models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(MsgSubscriptionDuplicate, author.Username)
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	metrics.LinkChangesTotal.WithLabelValues("subscription", "add").Inc()

	author.IsSubscribed = true
	return s.summarize(ctx, *author, recipesLimit)
}

// Unsubscribe stops following the author. The link must exist.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	author, err := s.users.Get(ctx, 0, authorID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		subscriber, err := s.users.Get(ctx, 0, subscriberID)
		if err != nil {
			return err
		}
		return notFound(MsgSubscriptionMissing, subscriber.Username, author.Username)
	}

	metrics.LinkChangesTotal.WithLabelValues("subscription", "remove").Inc()
	return nil
}

// List returns the followed authors ordered by username, each with its
// recipe count and its first recipesLimit recipes in listing order (all when
// the limit is not positive).
func (s *SubscriptionService) List(ctx context.Context, subscriberID uint, recipesLimit int) ([]AuthorSummary, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*, TRUE AS is_subscribed").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("users.username").
		Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	summaries := make([]AuthorSummary, 0, len(authors))
	for _, author := range authors {
		summary, err := s.summarize(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *SubscriptionService) summarize(ctx context.Context, author models.User, recipesLimit int) (*AuthorSummary, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	recipes, err := s.recipes.RecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &AuthorSummary{Author: author, RecipesCount: count, Recipes: recipes}, nil
}
