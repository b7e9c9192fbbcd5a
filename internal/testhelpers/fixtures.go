package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the password of every user created by CreateUser
const TestPassword = "s3cret-Pass"

// PNGDataURI is a 1x1 transparent PNG
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var (
	hashOnce sync.Once
	hash     string
)

func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		hash = string(h)
	})
	return hash
}

// CreateUser inserts a user named username with TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: passwordHash(t),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateTag inserts a tag whose name and color derive from slug
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	var count int64
	db.Model(&models.Tag{}).Count(&count)
	color := fmt.Sprintf("#%06X", count+1)
	tag := &models.Tag{Name: slug, Slug: slug, Color: &color}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

// CreateIngredient inserts a catalog ingredient
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

var (
	clockMu sync.Mutex
	clock   = time.Now().Add(-24 * time.Hour).Truncate(time.Second)
)

// nextPubDate hands out strictly increasing publication times, so fixture
// recipes sort in creation order.
func nextPubDate() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	clock = clock.Add(time.Second)
	return clock
}

// Line is an ingredient amount for CreateRecipe
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its tag links and ingredient lines
// directly, bypassing validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, lines ...Line) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/images/test.png",
		Text:        "Mix and cook.",
		CookingTime: 10,
		PubDate:     nextPubDate(),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error; err != nil {
				return err
			}
		}
		for _, line := range lines {
			row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
			if err := tx.Omit("Ingredient").Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// AddFavorite links the recipe to the user's favorites
func AddFavorite(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	if err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("failed to add favorite: %v", err)
	}
}

// AddToCart puts the recipe in the user's shopping cart
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	if err := db.Create(&models.Cart{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("failed to add to cart: %v", err)
	}
}

// Subscribe makes subscriber follow author
func Subscribe(t *testing.T, db *gorm.DB, subscriber, author *models.User) {
	t.Helper()
	if err := db.Create(&models.Subscription{SubscriberID: subscriber.ID, AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
}

// MemoryImageStore keeps saved images in memory
type MemoryImageStore struct {
	mu     sync.Mutex
	saved  int
	Images map[string][]byte
}

func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{Images: map[string][]byte{}}
}

func (s *MemoryImageStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved++
	url := fmt.Sprintf("/media/recipes/images/%d.png", s.saved)
	s.Images[url] = data
	return url, nil
}

func (s *MemoryImageStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Images, url)
	return nil
}
