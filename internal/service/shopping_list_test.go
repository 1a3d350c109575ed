package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

func TestAggregateSumsAndOrders(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	ingredients := []models.Ingredient{
		{Name: "sugar", MeasurementUnit: "g"},
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	}
	require.NoError(t, db.Create(&ingredients).Error)

	recipes := []models.Recipe{
		{Name: "Pancakes", Text: "x", CookingTime: 10, AuthorID: user.ID, Ingredients: []models.IngredientAmount{
			{IngredientID: ingredients[0].ID, Amount: 50},
			{IngredientID: ingredients[1].ID, Amount: 200},
		}},
		{Name: "Bread", Text: "x", CookingTime: 60, AuthorID: user.ID, Ingredients: []models.IngredientAmount{
			{IngredientID: ingredients[1].ID, Amount: 500},
			{IngredientID: ingredients[2].ID, Amount: 100},
		}},
	}
	require.NoError(t, db.Create(&recipes).Error)

	for _, r := range recipes {
		require.NoError(t, db.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: r.ID}).Error)
	}

	items, err := NewShoppingListService(db).Aggregate(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Ordered by ingredient name, shared ingredients summed
	assert.Equal(t, ShoppingListItem{Name: "flour", MeasurementUnit: "g", Amount: 700}, items[0])
	assert.Equal(t, ShoppingListItem{Name: "milk", MeasurementUnit: "ml", Amount: 100}, items[1])
	assert.Equal(t, ShoppingListItem{Name: "sugar", MeasurementUnit: "g", Amount: 50}, items[2])
}

func TestAggregateOnlyCountsCartRecipes(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	flour := models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&flour).Error)

	inCart := models.Recipe{Name: "Pancakes", Text: "x", CookingTime: 10, AuthorID: user.ID,
		Ingredients: []models.IngredientAmount{{IngredientID: flour.ID, Amount: 200}}}
	notInCart := models.Recipe{Name: "Bread", Text: "x", CookingTime: 60, AuthorID: user.ID,
		Ingredients: []models.IngredientAmount{{IngredientID: flour.ID, Amount: 500}}}
	require.NoError(t, db.Create(&inCart).Error)
	require.NoError(t, db.Create(&notInCart).Error)
	require.NoError(t, db.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: inCart.ID}).Error)

	items, err := NewShoppingListService(db).Aggregate(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 200, items[0].Amount)
}

func TestAggregateEmptyCart(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	_, err := NewShoppingListService(db).Aggregate(user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestRender(t *testing.T) {
	items := []ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Amount: 700},
		{Name: "milk", MeasurementUnit: "ml", Amount: 100},
	}

	document := Render(items)
	assert.Equal(t, "Нужно купить:\nflour - 700g\nmilk - 100ml\n", document)
}
