package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/feniks1632/foodgram-project-react/internal/database"
	"github.com/feniks1632/foodgram-project-react/internal/models"
	"github.com/feniks1632/foodgram-project-react/internal/service"
)

// testEnv holds the database, services and router for one handler test.
// Each test gets its own named in-memory SQLite database so tests can run
// in parallel without sharing state.
type testEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	auth := service.NewAuthService(db, "test-secret")
	users := service.NewUserService(db)
	subs := service.NewSubscriptionService(db)
	recipes := service.NewRecipeService(db)
	shopping := service.NewShoppingListService(db)
	catalog := service.NewCatalogService(db)
	images := service.NewImageService(service.NewLocalStorage(t.TempDir(), "/media"))

	authHandler := NewAuthHandler(auth)
	userHandler := NewUserHandler(users, subs, auth)
	// A nil rate limiter means no redis in tests; the middleware is a no-op.
	recipeHandler := NewRecipeHandler(recipes, shopping, subs, users, images, auth, nil)
	catalogHandler := NewCatalogHandler(catalog)

	router := gin.New()
	router.Use(gin.Recovery())
	root := router.Group("/api")
	authHandler.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	recipeHandler.RegisterRoutes(root)
	catalogHandler.RegisterRoutes(root)

	return &testEnv{DB: db, Router: router, Auth: auth}
}

// createUser registers a user directly through the auth service and returns
// the user together with a valid token.
func (e *testEnv) createUser(t *testing.T, username string) (models.User, string) {
	t.Helper()

	user, err := e.Auth.Register(service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	})
	require.NoError(t, err, "failed to create test user")

	token, err := e.Auth.GenerateToken(user.ID)
	require.NoError(t, err, "failed to generate token")

	return *user, token
}

// seedCatalog inserts the reference tags and ingredients used by the
// recipe tests.
func (e *testEnv) seedCatalog(t *testing.T) ([]models.Tag, []models.Ingredient) {
	t.Helper()

	tags := []models.Tag{
		{Name: "breakfast", Color: "#FFFC66", Slug: "breakfast"},
		{Name: "dinner", Color: "#E4007C", Slug: "dinner"},
	}
	require.NoError(t, e.DB.Create(&tags).Error)

	ingredients := []models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
		{Name: "salt", MeasurementUnit: "g"},
	}
	require.NoError(t, e.DB.Create(&ingredients).Error)

	return tags, ingredients
}

// request performs an HTTP request against the test router. An empty token
// sends the request anonymously.
func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// decodeJSON unmarshals a response body into target
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "failed to decode response: %s", w.Body.String())
}

// createRecipe inserts a recipe with its associations directly, bypassing
// the HTTP layer, for tests that only need existing data.
func (e *testEnv) createRecipe(t *testing.T, authorID uint, name string, tags []models.Tag, amounts []models.IngredientAmount) models.Recipe {
	t.Helper()

	recipe := models.Recipe{
		Name:        name,
		Text:        "Some instructions",
		CookingTime: 10,
		AuthorID:    authorID,
		Tags:        tags,
		Ingredients: amounts,
	}
	require.NoError(t, e.DB.Create(&recipe).Error)
	return recipe
}
