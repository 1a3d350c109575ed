package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feniks1632/foodgram-project-react/internal/middleware"
	"github.com/feniks1632/foodgram-project-react/internal/models"
	"github.com/feniks1632/foodgram-project-react/internal/service"
)

type RecipeHandler struct {
	recipes  *service.RecipeService
	shopping *service.ShoppingListService
	subs     *service.SubscriptionService
	users    *service.UserService
	images   *service.ImageService
	auth     *service.AuthService
	limiter  *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	shopping *service.ShoppingListService,
	subs *service.SubscriptionService,
	users *service.UserService,
	images *service.ImageService,
	auth *service.AuthService,
	limiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		shopping: shopping,
		subs:     subs,
		users:    users,
		images:   images,
		auth:     auth,
		limiter:  limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.auth), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
		recipes.POST("", middleware.AuthMiddleware(h.auth), h.limiter.RateLimitMiddleware(), h.Create)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.auth), h.Update)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.Delete)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Favorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.Unfavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)
	p := parsePagination(c)

	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		Offset:   p.offset(),
		Limit:    p.Limit,
	}
	if author, err := strconv.ParseUint(c.Query("author"), 10, 32); err == nil {
		filter.AuthorID = uint(author)
	}
	// The two viewer-relative filters only apply to authenticated viewers
	if viewerID != 0 {
		filter.Favorited = c.Query("is_favorited") == "1"
		filter.InCart = c.Query("is_in_shopping_cart") == "1"
	}

	projections, total, err := h.recipes.List(viewerID, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := h.renderRecipes(viewerID, projections)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPageResponse(c, total, p, results))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewerID := middleware.CurrentUserID(c)
	projection, err := h.recipes.Get(viewerID, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := h.renderRecipes(viewerID, []service.RecipeProjection{*projection})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewerID := middleware.CurrentUserID(c)

	imagePath, err := h.storeImage(c, req.Image)
	if err != nil {
		abortWithError(c, err)
		return
	}

	projection, err := h.recipes.Create(viewerID, service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       imagePath,
		Ingredients: toAmountInputs(req.Ingredients),
		TagIDs:      req.Tags,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := h.renderRecipes(viewerID, []service.RecipeProjection{*projection})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, results[0])
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewerID := middleware.CurrentUserID(c)

	imagePath, err := h.storeImage(c, req.Image)
	if err != nil {
		abortWithError(c, err)
		return
	}

	projection, err := h.recipes.Update(viewerID, id, service.RecipeUpdate{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       imagePath,
		Ingredients: toAmountInputs(req.Ingredients),
		TagIDs:      req.Tags,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := h.renderRecipes(viewerID, []service.RecipeProjection{*projection})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(middleware.CurrentUserID(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addRelation(c, h.recipes.AddFavorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeRelation(c, h.recipes.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.recipes.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.recipes.RemoveFromCart)
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(userID, recipeID uint) (*models.Recipe, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := add(middleware.CurrentUserID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newShortRecipeResponse(*recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(userID, recipeID uint) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := remove(middleware.CurrentUserID(c), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	items, err := h.shopping.Aggregate(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	user, err := h.users.Get(userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	document := service.Render(items)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", user.Username+"_shopping_list.txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(document))
}

// renderRecipes resolves the author is_subscribed flags for a batch of
// projections with one query and shapes the responses.
func (h *RecipeHandler) renderRecipes(viewerID uint, projections []service.RecipeProjection) ([]RecipeResponse, error) {
	authorIDs := make([]uint, 0, len(projections))
	seen := make(map[uint]struct{}, len(projections))
	for _, p := range projections {
		if _, dup := seen[p.Recipe.AuthorID]; !dup {
			seen[p.Recipe.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.Recipe.AuthorID)
		}
	}

	subscribed, err := h.subs.IsSubscribed(viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	results := make([]RecipeResponse, 0, len(projections))
	for _, p := range projections {
		results = append(results, newRecipeResponse(p, subscribed[p.Recipe.AuthorID]))
	}
	return results, nil
}

func (h *RecipeHandler) storeImage(c *gin.Context, encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	return h.images.SaveBase64(c.Request.Context(), encoded)
}

func toAmountInputs(entries []IngredientAmountRequest) []service.IngredientAmountInput {
	inputs := make([]service.IngredientAmountInput, len(entries))
	for i, entry := range entries {
		inputs[i] = service.IngredientAmountInput{ID: entry.ID, Amount: entry.Amount}
	}
	return inputs
}
