package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feniks1632/foodgram-project-react/internal/middleware"
	"github.com/feniks1632/foodgram-project-react/internal/models"
	"github.com/feniks1632/foodgram-project-react/internal/service"
)

type UserHandler struct {
	users *service.UserService
	subs  *service.SubscriptionService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, subs *service.SubscriptionService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, subs: subs, auth: auth}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.PATCH("/me", middleware.AuthMiddleware(h.auth), h.UpdateMe)
		users.POST("/set_password", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*user, false))
}

func (h *UserHandler) List(c *gin.Context) {
	p := parsePagination(c)
	users, total, err := h.users.List(p.offset(), p.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	subscribed, err := h.subscribedSet(c, users)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, newUserResponse(u, subscribed[u.ID]))
	}

	c.JSON(http.StatusOK, newPageResponse(c, total, p, results))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	subscribed, err := h.subscribedSet(c, []models.User{*user})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user, subscribed[user.ID]))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Get(middleware.CurrentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(middleware.CurrentUserID(c), service.ProfileUpdate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.SetPassword(middleware.CurrentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := h.subs.Subscribe(middleware.CurrentUserID(c), authorID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := newSubscriptionResponse(*author)
	if recipesLimit := parseRecipesLimit(c); recipesLimit > 0 && len(resp.Recipes) > recipesLimit {
		resp.Recipes = resp.Recipes[:recipesLimit]
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.subs.Unsubscribe(middleware.CurrentUserID(c), authorID); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	p := parsePagination(c)
	authors, total, err := h.subs.List(middleware.CurrentUserID(c), p.offset(), p.Limit, parseRecipesLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for _, a := range authors {
		results = append(results, newSubscriptionResponse(a))
	}

	c.JSON(http.StatusOK, newPageResponse(c, total, p, results))
}

// subscribedSet resolves the viewer-relative is_subscribed flag for a batch
// of users with a single query.
func (h *UserHandler) subscribedSet(c *gin.Context, users []models.User) (map[uint]bool, error) {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return h.subs.IsSubscribed(middleware.CurrentUserID(c), ids)
}

func parseRecipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
