package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on&_busy_timeout=5000", database.SQLiteDSN("app.db"))
	assert.Equal(t, "app.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", database.SQLiteDSN("app.db?mode=rwc"))
}

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "app.db")}
	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	assert.NoError(t, database.HealthCheck(context.Background(), db))

	// Migrating twice is a no-op
	assert.NoError(t, database.Migrate(db))
}

func TestMigrateCreatesTables(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	for _, table := range []string{
		"users", "subscriptions", "tags", "ingredients", "recipes",
		"recipe_ingredients", "recipe_tags", "favorites", "carts",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestMigrateBackfillsSearchNames(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	flour := testhelpers.CreateIngredient(t, db, "Мука", "г")
	assert.Equal(t, "мука", flour.SearchName)
	require.NoError(t, db.Model(flour).UpdateColumn("search_name", "").Error)

	require.NoError(t, database.Migrate(db))

	var stored models.Ingredient
	require.NoError(t, db.First(&stored, flour.ID).Error)
	assert.Equal(t, "мука", stored.SearchName)
}

func assertConstraints(t *testing.T, db *gorm.DB) {
	t.Helper()
	author := testhelpers.CreateUser(t, db, "author")
	reader := testhelpers.CreateUser(t, db, "reader")
	salt := testhelpers.CreateIngredient(t, db, "соль", "г")
	recipe := testhelpers.CreateRecipe(t, db, author, "Суп", nil, testhelpers.Line{Ingredient: salt, Amount: 5})

	// Ingredient (name, unit) pairs are unique
	err := db.Create(&models.Ingredient{Name: "соль", MeasurementUnit: "г"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, db.Create(&models.Ingredient{Name: "соль", MeasurementUnit: "щепотка"}).Error)

	// One favorite per user and recipe
	testhelpers.AddFavorite(t, db, reader, recipe)
	err = db.Create(&models.Favorite{UserID: reader.ID, RecipeID: recipe.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Amounts must be positive
	err = db.Omit("Ingredient").Create(&models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: salt.ID + 1, Amount: 0}).Error
	assert.Error(t, err)

	// Self subscriptions are rejected by the store as well
	err = db.Create(&models.Subscription{SubscriberID: reader.ID, AuthorID: reader.ID}).Error
	assert.Error(t, err)

	// Deleting the author cascades to recipes and their dependents
	require.NoError(t, db.Delete(&models.User{}, author.ID).Error)
	for _, model := range []interface{}{&models.Recipe{}, &models.RecipeIngredient{}, &models.Favorite{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestConstraintsSQLite(t *testing.T) {
	assertConstraints(t, testhelpers.SetupSQLiteDB(t))
}

func TestConstraintsPostgres(t *testing.T) {
	assertConstraints(t, testhelpers.SetupPostgresDB(t))
}
