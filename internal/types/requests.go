package types

import "encoding/json"

// RecipeRequest is the body of a recipe create or update. Tags, ingredients
// and cooking time are kept raw so presence, type and value can be checked
// field by field before anything is stored.
type RecipeRequest struct {
	Name        *string         `json:"name"`
	Text        *string         `json:"text"`
	Image       *string         `json:"image"`
	CookingTime json.RawMessage `json:"cooking_time"`
	Tags        json.RawMessage `json:"tags"`
	Ingredients json.RawMessage `json:"ingredients"`
}

// RecipeFilter holds the list query parameters
type RecipeFilter struct {
	AuthorID         *uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RegisterRequest is the body of user registration
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

// LoginRequest is the body of token login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordRequest is the body of a password change
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=150"`
	CurrentPassword string `json:"current_password" validate:"required"`
}
