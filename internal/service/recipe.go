package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/feniks1632/foodgram-project-react/internal/models"
)

const (
	// Amount bounds for one ingredient entry in a recipe payload
	MinIngredientAmount = 1
	MaxIngredientAmount = 10000
)

// RecipeService handles recipe reads, the write pipeline and the
// favorite / shopping-cart relations.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmountInput is one (ingredient id, amount) entry of a payload
type IngredientAmountInput struct {
	ID     uint
	Amount int
}

// RecipeInput holds a validated create payload. Image is the already-stored
// image path, not the raw upload.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Ingredients []IngredientAmountInput
	TagIDs      []uint
}

// RecipeUpdate holds a partial update payload. Nil scalar fields and empty
// association lists leave the current values unchanged.
type RecipeUpdate struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       string
	Ingredients []IngredientAmountInput
	TagIDs      []uint
}

// RecipeFilter narrows a recipe listing
type RecipeFilter struct {
	AuthorID  uint
	TagSlugs  []string
	Favorited bool
	InCart    bool
	Offset    int
	Limit     int
}

// RecipeProjection is a recipe with its viewer-relative flags
type RecipeProjection struct {
	Recipe           models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
}

type recipeFlagsRow struct {
	ID               uint
	IsFavorited      bool
	IsInShoppingCart bool
}

func (s *RecipeService) baseQuery(viewerID uint, f RecipeFilter) *gorm.DB {
	q := s.db.Model(&models.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.Favorited {
		q = q.Where("EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?)", viewerID)
	}
	if f.InCart {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?)", viewerID)
	}
	return q
}

// flagsSelect annotates each candidate row with the viewer-relative booleans
// in the listing query itself, so no per-recipe queries are needed. A zero
// viewerID (anonymous) makes both subqueries empty and both flags false.
const flagsSelect = `recipes.id,
EXISTS (SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?) AS is_favorited,
EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?) AS is_in_shopping_cart`

// List returns one page of recipes, newest first, with viewer-relative flags,
// and the total number of matches.
func (s *RecipeService) List(viewerID uint, f RecipeFilter) ([]RecipeProjection, int64, error) {
	var total int64
	if err := s.baseQuery(viewerID, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := s.baseQuery(viewerID, f).
		Select(flagsSelect, viewerID, viewerID).
		Order("recipes.pub_date DESC, recipes.id DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}

	var rows []recipeFlagsRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	projections, err := s.assemble(rows)
	if err != nil {
		return nil, 0, err
	}
	return projections, total, nil
}

// Get returns one recipe with viewer-relative flags
func (s *RecipeService) Get(viewerID, recipeID uint) (*RecipeProjection, error) {
	var rows []recipeFlagsRow
	err := s.db.Model(&models.Recipe{}).
		Select(flagsSelect, viewerID, viewerID).
		Where("recipes.id = ?", recipeID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	projections, err := s.assemble(rows)
	if err != nil {
		return nil, err
	}
	return &projections[0], nil
}

// assemble loads the full recipe aggregates for the annotated id rows,
// preserving row order.
func (s *RecipeService) assemble(rows []recipeFlagsRow) ([]RecipeProjection, error) {
	if len(rows) == 0 {
		return []RecipeProjection{}, nil
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var recipes []models.Recipe
	err := s.db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_amounts.id") }).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	projections := make([]RecipeProjection, 0, len(rows))
	for _, row := range rows {
		recipe, ok := byID[row.ID]
		if !ok {
			continue
		}
		projections = append(projections, RecipeProjection{
			Recipe:           recipe,
			IsFavorited:      row.IsFavorited,
			IsInShoppingCart: row.IsInShoppingCart,
		})
	}
	return projections, nil
}

// Create runs the recipe write pipeline: validates the associations, then
// persists the recipe row, its ingredient amounts and its tag set in one
// transaction.
func (s *RecipeService) Create(authorID uint, in RecipeInput) (*RecipeProjection, error) {
	if err := s.validateAssociations(in.Ingredients, in.TagIDs); err != nil {
		return nil, err
	}

	tags, err := s.loadTags(in.TagIDs)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       in.Image,
		AuthorID:    authorID,
		Tags:        tags,
		Ingredients: amountRows(in.Ingredients),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&recipe).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(authorID, recipe.ID)
}

// Update applies a partial update. When a non-empty ingredient or tag list is
// supplied the existing association set is cleared and re-inserted; an omitted
// or empty list leaves the set unchanged. Everything happens in one
// transaction so readers never observe a recipe with half its associations.
func (s *RecipeService) Update(viewerID, recipeID uint, in RecipeUpdate) (*RecipeProjection, error) {
	recipe, err := s.authorizedRecipe(viewerID, recipeID)
	if err != nil {
		return nil, err
	}

	if err := s.validateAssociations(in.Ingredients, in.TagIDs); err != nil {
		return nil, err
	}

	var tags []models.Tag
	if len(in.TagIDs) > 0 {
		if tags, err = s.loadTags(in.TagIDs); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}
	if in.Image != "" {
		updates["image"] = in.Image
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if len(in.Ingredients) > 0 {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
				return err
			}
			rows := amountRows(in.Ingredients)
			for i := range rows {
				rows[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(in.TagIDs) > 0 {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(viewerID, recipe.ID)
}

// Delete removes a recipe together with its owned association rows
func (s *RecipeService) Delete(viewerID, recipeID uint) error {
	recipe, err := s.authorizedRecipe(viewerID, recipeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// AddFavorite transitions the (user, recipe) favorite relation to present.
// A duplicate attempt surfaces as a validation error, not a server error.
func (s *RecipeService) AddFavorite(userID, recipeID uint) (*models.Recipe, error) {
	return s.addRelation(userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID},
		"recipe is already in favorites")
}

// RemoveFavorite transitions the relation to absent. Removing an absent
// relation succeeds; only a missing recipe is an error.
func (s *RecipeService) RemoveFavorite(userID, recipeID uint) error {
	if err := s.ensureRecipeExists(recipeID); err != nil {
		return err
	}
	return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{}).Error
}

// AddToCart transitions the (user, recipe) shopping-cart relation to present
func (s *RecipeService) AddToCart(userID, recipeID uint) (*models.Recipe, error) {
	return s.addRelation(userID, recipeID, &models.ShoppingCart{UserID: userID, RecipeID: recipeID},
		"recipe is already in shopping cart")
}

// RemoveFromCart transitions the shopping-cart relation to absent
func (s *RecipeService) RemoveFromCart(userID, recipeID uint) error {
	if err := s.ensureRecipeExists(recipeID); err != nil {
		return err
	}
	return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.ShoppingCart{}).Error
}

func (s *RecipeService) addRelation(userID, recipeID uint, relation interface{}, conflictMessage string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.db.Create(relation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError(conflictMessage)
		}
		return nil, err
	}

	return &recipe, nil
}

func (s *RecipeService) ensureRecipeExists(recipeID uint) error {
	var count int64
	if err := s.db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// authorizedRecipe loads a recipe and checks that the viewer may mutate it
func (s *RecipeService) authorizedRecipe(viewerID, recipeID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if recipe.AuthorID != viewerID {
		var viewer models.User
		if err := s.db.First(&viewer, viewerID).Error; err != nil {
			return nil, ErrPermissionDenied
		}
		if !viewer.IsAdmin() {
			return nil, ErrPermissionDenied
		}
	}

	return &recipe, nil
}

// validateAssociations enforces the payload rules shared by create and
// update: pairwise-distinct ingredient ids, amount bounds, distinct tag ids
// and existence of every referenced catalog row.
func (s *RecipeService) validateAssociations(ingredients []IngredientAmountInput, tagIDs []uint) error {
	seen := make(map[uint]struct{}, len(ingredients))
	for _, entry := range ingredients {
		if _, dup := seen[entry.ID]; dup {
			return newValidationError("ingredients must be unique")
		}
		seen[entry.ID] = struct{}{}
		if entry.Amount < MinIngredientAmount || entry.Amount > MaxIngredientAmount {
			return newValidationError("ingredient amount must be between 1 and 10000")
		}
	}

	if len(ingredients) > 0 {
		ids := make([]uint, len(ingredients))
		for i, entry := range ingredients {
			ids[i] = entry.ID
		}
		var count int64
		if err := s.db.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return newValidationError("ingredient does not exist")
		}
	}

	seenTags := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seenTags[id]; dup {
			return newValidationError("tags must be unique")
		}
		seenTags[id] = struct{}{}
	}

	return nil
}

func (s *RecipeService) loadTags(tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := s.db.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, newValidationError("tag does not exist")
	}
	return tags, nil
}

func amountRows(ingredients []IngredientAmountInput) []models.IngredientAmount {
	rows := make([]models.IngredientAmount, len(ingredients))
	for i, entry := range ingredients {
		rows[i] = models.IngredientAmount{
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		}
	}
	return rows
}
