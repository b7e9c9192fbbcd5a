package models

import (
	"time"
)

// Recipe is the aggregate root. It owns its ingredient lines and tag links.
type Recipe struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Name        string             `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Image       string             `gorm:"size:255;not null" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`

	// Existence annotations computed per caller; never persisted.
	IsFavorited      bool `gorm:"->;-:migration" json:"is_favorited"`
	IsInShoppingCart bool `gorm:"->;-:migration" json:"is_in_shopping_cart"`
}

// RecipeIngredient is one ingredient line of a recipe
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1" json:"amount"`
}

// RecipeTag is the join row between recipes and tags
type RecipeTag struct {
	RecipeID uint `gorm:"primaryKey"`
	TagID    uint `gorm:"primaryKey;index"`
}

// Favorite marks a recipe as a user's favorite
type Favorite struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	User     User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RecipeID uint   `gorm:"not null;uniqueIndex:idx_favorite_pair;index" json:"recipe_id"`
	Recipe   Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Cart puts a recipe in a user's shopping cart
type Cart struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_cart_pair" json:"user_id"`
	User     User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RecipeID uint   `gorm:"not null;uniqueIndex:idx_cart_pair;index" json:"recipe_id"`
	Recipe   Recipe `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// All returns every persisted model in migration order. The recipe_tags
// join table is migrated with Recipe.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Subscription{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&Cart{},
	}
}
