package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogService serves tags and ingredients. The catalog is read-only over
// HTTP and filled by the load_data command.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgTagNotFound, id)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// ListIngredients returns ingredients ordered by name. A non-empty name
// filter matches case-insensitively anywhere in the name, with names
// starting with it listed first.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	query := s.db.WithContext(ctx)

	if key := escapeLike(models.SearchKey(name)); key != "" {
		query = query.Where(`search_name LIKE ? ESCAPE '\'`, "%"+key+"%").
			Clauses(clause.OrderBy{
				Expression: clause.Expr{
					SQL:                `CASE WHEN search_name LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name`,
					Vars:               []interface{}{key + "%"},
					WithoutParentheses: true,
				},
			})
	} else {
		query = query.Order("name")
	}

	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE treat s literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgIngredientNotFound, id)
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ingredient, nil
}

// ExistingTagIDs reports which of ids exist
func (s *CatalogService) ExistingTagIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []uint
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

// IngredientsByID loads the ingredients among ids that exist
func (s *CatalogService) IngredientsByID(ctx context.Context, ids []uint) (map[uint]models.Ingredient, error) {
	found := make(map[uint]models.Ingredient, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	for _, ing := range ingredients {
		found[ing.ID] = ing
	}
	return found, nil
}

// LoadIngredients inserts ingredients in one transaction, skipping existing
// (name, unit) pairs, and returns how many rows were new.
func (s *CatalogService) LoadIngredients(ctx context.Context, ingredients []models.Ingredient) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range ingredients {
			row := models.Ingredient{Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("failed to load ingredient %q: %w", ing.Name, res.Error)
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// LoadTags inserts tags in one transaction, skipping existing slugs. Slugs
// are validated before anything is written.
func (s *CatalogService) LoadTags(ctx context.Context, tags []models.Tag) (int, error) {
	for _, tag := range tags {
		if err := ValidateSlug(tag.Slug); err != nil {
			return 0, err
		}
	}

	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			row := models.Tag{Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("failed to load tag %q: %w", tag.Slug, res.Error)
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
