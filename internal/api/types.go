package api

import (
	"github.com/feniks1632/foodgram-project-react/internal/models"
	"github.com/feniks1632/foodgram-project-react/internal/service"
)

// UserResponse is the user projection with the viewer-relative
// subscription flag
type UserResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// IngredientAmountResponse is one flattened ingredient entry of a recipe
type IngredientAmountResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the read-oriented recipe projection
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact recipe projection returned by the
// favorite, cart and subscription endpoints
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with their recipes
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

// PageResponse is the pagination envelope used by every paginated listing
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=6,max=150"`
}

type TokenLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=6,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// IngredientAmountRequest is one (ingredient id, amount) payload entry.
// The amount bounds are enforced by the service so an out-of-range value
// gets a field-level message rather than a generic binding error.
type IngredientAmountRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

type CreateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uint                    `json:"tags" binding:"required,min=1"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1"`
}

type UpdateRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" binding:"omitempty,dive"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        *string                   `json:"name" binding:"omitempty,max=200"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time" binding:"omitempty,min=1"`
}

func newUserResponse(u models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func newShortRecipeResponse(r models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func newRecipeResponse(p service.RecipeProjection, authorSubscribed bool) RecipeResponse {
	ingredients := make([]IngredientAmountResponse, 0, len(p.Recipe.Ingredients))
	for _, entry := range p.Recipe.Ingredients {
		item := IngredientAmountResponse{
			ID:     entry.IngredientID,
			Amount: entry.Amount,
		}
		if entry.Ingredient != nil {
			item.Name = entry.Ingredient.Name
			item.MeasurementUnit = entry.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, item)
	}

	tags := p.Recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	var author UserResponse
	if p.Recipe.Author != nil {
		author = newUserResponse(*p.Recipe.Author, authorSubscribed)
	}

	return RecipeResponse{
		ID:               p.Recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      p.IsFavorited,
		IsInShoppingCart: p.IsInShoppingCart,
		Name:             p.Recipe.Name,
		Image:            p.Recipe.Image,
		Text:             p.Recipe.Text,
		CookingTime:      p.Recipe.CookingTime,
	}
}

func newSubscriptionResponse(a service.SubscribedAuthor) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, 0, len(a.Recipes))
	for _, r := range a.Recipes {
		recipes = append(recipes, newShortRecipeResponse(r))
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(a.User, true),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}
