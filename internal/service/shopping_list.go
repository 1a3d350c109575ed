package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

// shoppingListHeader is the first line of the rendered document
const shoppingListHeader = "Нужно купить:"

// ErrEmptyCart is returned when the aggregator is asked to run on an
// empty shopping cart.
var ErrEmptyCart = newValidationError("shopping cart is empty")

// ShoppingListItem is one aggregated group of the shopping list
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingListService builds the aggregated shopping list for a user's cart
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate collects every ingredient amount of every recipe in the user's
// cart, grouped by (name, measurement unit) with summed amounts, ordered by
// ingredient name. An empty cart is an error, not an empty list.
func (s *ShoppingListService) Aggregate(userID uint) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.Model(&models.IngredientAmount{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_amounts.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	return items, nil
}

// Render produces the plain-text shopping list document
func Render(items []ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteByte('\n')
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d%s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
