package models

import (
	"strings"

	"gorm.io/gorm"
)

// Tag labels recipes. Color and slug are unique; color may be unset.
type Tag struct {
	ID    uint    `gorm:"primarykey" json:"id"`
	Name  string  `gorm:"size:200;not null" json:"name"`
	Color *string `gorm:"size:7;uniqueIndex" json:"color"`
	Slug  string  `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

// Ingredient is a catalog product with its measurement unit. SearchName is
// the lowercased name that name filters match against.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	SearchName      string `gorm:"size:200;not null;default:'';index" json:"-"`
}

// SearchKey folds s the way SearchName is stored. SQL LOWER only folds ASCII
// on SQLite, so folding happens here.
func SearchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = SearchKey(i.Name)
	return nil
}
