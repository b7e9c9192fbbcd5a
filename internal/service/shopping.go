package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/metrics"
)

// ShoppingListFilename is the download name of the exported list
const ShoppingListFilename = "foodgram_products.txt"

// ShoppingItem is one aggregated shopping list line
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// String renders the line as "<name>, (<unit>) <amount>"
func (i ShoppingItem) String() string {
	return fmt.Sprintf("%s, (%s) %d", i.Name, i.MeasurementUnit, i.Amount)
}

// ShoppingList sums the ingredient lines of every recipe in the user's cart,
// grouped by ingredient name and unit, ordered by name.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Joins("JOIN carts c ON c.recipe_id = ri.recipe_id").
		Where("c.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build shopping list: %w", err)
	}

	metrics.ShoppingListDownloads.Inc()
	return items, nil
}

// FormatShoppingList renders one line per item, each terminated by a newline
func FormatShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.String())
		b.WriteByte('\n')
	}
	return b.String()
}
