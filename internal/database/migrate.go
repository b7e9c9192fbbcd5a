package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
)

// Migrate creates or updates the schema, including unique indexes, check
// constraints and cascading foreign keys.
func Migrate(db *gorm.DB) error {
	log := logger.WithComponent("database")
	log.Info().Str("dialect", db.Dialector.Name()).Msg("running auto-migration")

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := backfillSearchNames(db); err != nil {
		return err
	}

	log.Info().Msg("schema is up to date")
	return nil
}

// backfillSearchNames fills search_name for ingredients stored before the
// column existed.
func backfillSearchNames(db *gorm.DB) error {
	var stale []models.Ingredient
	err := db.Where("search_name = ''").FindInBatches(&stale, 500, func(tx *gorm.DB, batch int) error {
		for _, ing := range stale {
			if err := tx.Model(&models.Ingredient{ID: ing.ID}).UpdateColumn("search_name", models.SearchKey(ing.Name)).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("failed to backfill ingredient search names: %w", err)
	}
	return nil
}
