package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	maxRecipeNameLength = 200
	minCookingTime      = 1
)

// Correlated existence checks against the caller's link rows
const (
	favoritedExpr  = "EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)"
	inCartExpr     = "EXISTS (SELECT 1 FROM carts c WHERE c.recipe_id = recipes.id AND c.user_id = ?)"
	subscribedExpr = "EXISTS (SELECT 1 FROM subscriptions s WHERE s.author_id = users.id AND s.subscriber_id = ?)"
	taggedExpr     = "EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = recipes.id AND t.slug IN ?)"
)

// RecipeService owns the recipe aggregate: the recipe row, its ingredient
// lines and its tag links.
type RecipeService struct {
	db      *gorm.DB
	catalog CatalogLookup
	images  ImageStore
	log     zerolog.Logger
}

func NewRecipeService(db *gorm.DB, catalog CatalogLookup, images ImageStore) *RecipeService {
	return &RecipeService{
		db:      db,
		catalog: catalog,
		images:  images,
		log:     logger.WithComponent("recipes"),
	}
}

// recipeFields holds the validated scalar fields of a request. Nil means the
// field was absent and keeps its stored value.
type recipeFields struct {
	name        *string
	text        *string
	cookingTime *int
	image       *Image
}

// Create validates the request and stores the recipe with its tag links and
// ingredient lines in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uint, req *types.RecipeRequest) (_ *models.Recipe, err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("create", metrics.Result(err)).Inc() }()

	fields, tagIDs, lines, err := s.validate(ctx, req, 0, true)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Save(ctx, fields.image.Data, fields.image.ContentType)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        *fields.name,
		Text:        *fields.text,
		CookingTime: *fields.cookingTime,
		Image:       imageURL,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, recipe.ID, tagIDs); err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, translateWriteError(err)
	}

	s.log.Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.Get(ctx, authorID, recipe.ID)
}

// Update replaces the provided scalar fields and the whole tag and
// ingredient sets in one transaction. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, callerID, recipeID uint, req *types.RecipeRequest) (_ *models.Recipe, err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("update", metrics.Result(err)).Inc() }()

	if err := s.authorize(ctx, callerID, recipeID); err != nil {
		return nil, err
	}

	fields, tagIDs, lines, err := s.validate(ctx, req, recipeID, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if fields.name != nil {
		updates["name"] = *fields.name
	}
	if fields.text != nil {
		updates["text"] = *fields.text
	}
	if fields.cookingTime != nil {
		updates["cooking_time"] = *fields.cookingTime
	}
	if fields.image != nil {
		url, err := s.images.Save(ctx, fields.image.Data, fields.image.ContentType)
		if err != nil {
			return nil, err
		}
		updates["image"] = url
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{ID: recipeID}).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := replaceTags(tx, recipeID, tagIDs); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertLines(tx, recipeID, lines)
	})
	if err != nil {
		if url, saved := updates["image"].(string); saved {
			s.discardImage(ctx, url)
		}
		return nil, translateWriteError(err)
	}

	s.log.Info().Uint("recipe_id", recipeID).Msg("recipe updated")
	return s.Get(ctx, callerID, recipeID)
}

// discardImage removes an image saved for a write that did not commit
func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if err := s.images.Delete(context.WithoutCancel(ctx), url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("failed to remove image of a failed recipe write")
	}
}

// Delete removes the recipe with its lines, tag links, favorites and cart
// rows. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, callerID, recipeID uint) (err error) {
	defer func() { metrics.RecipeWritesTotal.WithLabelValues("delete", metrics.Result(err)).Inc() }()

	if err := s.authorize(ctx, callerID, recipeID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.Favorite{}, &models.Cart{}, &models.RecipeTag{}, &models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, recipeID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.log.Info().Uint("recipe_id", recipeID).Msg("recipe deleted")
	return nil
}

// Get returns one recipe annotated for the viewer. A zero viewer is
// anonymous and gets false annotations.
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.annotated(ctx, viewerID).Where("recipes.id = ?", recipeID).Take(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgRecipeNotFound, recipeID)
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// List returns recipes by publication date then name, annotated for the viewer and narrowed
// by the filter. Favorite and cart filters only apply to a known viewer.
func (s *RecipeService) List(ctx context.Context, viewerID uint, filter types.RecipeFilter) ([]models.Recipe, error) {
	query := s.annotated(ctx, viewerID)

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where(taggedExpr, filter.TagSlugs)
	}
	if viewerID != 0 {
		if filter.IsFavorited {
			query = query.Where(favoritedExpr, viewerID)
		}
		if filter.IsInShoppingCart {
			query = query.Where(inCartExpr, viewerID)
		}
	}

	var recipes []models.Recipe
	if err := query.Order("recipes.pub_date, recipes.name").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// RecipesByAuthor returns up to limit of an author's recipes in listing
// order; a non-positive limit returns all of them.
func (s *RecipeService) RecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("pub_date, name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list author recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) annotated(ctx context.Context, viewerID uint) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			if viewerID == 0 {
				return db
			}
			return db.Select("users.*, "+subscribedExpr+" AS is_subscribed", viewerID)
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")

	if viewerID == 0 {
		return query.Select("recipes.*")
	}
	return query.Select(
		"recipes.*, "+favoritedExpr+" AS is_favorited, "+inCartExpr+" AS is_in_shopping_cart",
		viewerID, viewerID,
	)
}

func (s *RecipeService) authorize(ctx context.Context, callerID, recipeID uint) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").Take(&recipe, recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(MsgRecipeNotFound, recipeID)
		}
		return fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.AuthorID != callerID {
		return forbidden(MsgNotAuthor)
	}
	return nil
}

// validate checks scalars, then tags, then ingredients. recipeID is the
// recipe being updated (zero on create) and is excluded from the name
// uniqueness check.
func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest, recipeID uint, create bool) (*recipeFields, []uint, []IngredientLine, error) {
	fields, err := s.validateScalars(ctx, req, recipeID, create)
	if err != nil {
		return nil, nil, nil, err
	}
	tagIDs, err := ValidateTags(ctx, req.Tags, s.catalog)
	if err != nil {
		return nil, nil, nil, err
	}
	lines, err := ValidateIngredients(ctx, req.Ingredients, s.catalog)
	if err != nil {
		return nil, nil, nil, err
	}
	return fields, tagIDs, lines, nil
}

func (s *RecipeService) validateScalars(ctx context.Context, req *types.RecipeRequest, recipeID uint, create bool) (*recipeFields, error) {
	fields := &recipeFields{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		switch {
		case name == "":
			return nil, invalid("name", MsgRequiredField)
		case utf8.RuneCountInString(name) > maxRecipeNameLength:
			return nil, invalid("name", MsgMaxLength, maxRecipeNameLength)
		}
		var taken int64
		err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("name = ? AND id <> ?", name, recipeID).Count(&taken).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check recipe name: %w", err)
		}
		if taken > 0 {
			return nil, invalid("name", MsgRecipeNameTaken)
		}
		fields.name = &name
	} else if create {
		return nil, invalid("name", MsgRequiredField)
	}

	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			return nil, invalid("text", MsgRequiredField)
		}
		fields.text = req.Text
	} else if create {
		return nil, invalid("text", MsgRequiredField)
	}

	if !isAbsent(req.CookingTime) {
		minutes, ok := parseCookingTime(req.CookingTime)
		if !ok {
			return nil, invalid("cooking_time", MsgNotInteger)
		}
		if minutes < minCookingTime {
			return nil, invalid("cooking_time", MsgMinValue, minCookingTime)
		}
		fields.cookingTime = &minutes
	} else if create {
		return nil, invalid("cooking_time", MsgRequiredField)
	}

	if req.Image != nil && *req.Image != "" {
		img, err := DecodeDataURI(*req.Image)
		if err != nil {
			return nil, invalid("image", MsgInvalidImage)
		}
		fields.image = img
	} else if create {
		return nil, invalid("image", MsgRequiredField)
	}

	return fields, nil
}

func replaceTags(tx *gorm.DB, recipeID uint, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
		return err
	}
	links := make([]models.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return tx.Create(&links).Error
}

// insertLines bulk inserts the ingredient lines ordered by ingredient name
// descending.
func insertLines(tx *gorm.DB, recipeID uint, lines []IngredientLine) error {
	sorted := make([]IngredientLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ingredient.Name > sorted[j].Ingredient.Name
	})

	rows := make([]models.RecipeIngredient, 0, len(sorted))
	for _, line := range sorted {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.Ingredient.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict(MsgRecipeNameTaken)
	}
	return fmt.Errorf("failed to save recipe: %w", err)
}
