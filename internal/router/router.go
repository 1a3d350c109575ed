package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/feniks1632/foodgram-project-react/internal/api"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	recipeHandler *api.RecipeHandler,
	catalogHandler *api.CatalogHandler,
	mediaDir string,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Locally stored recipe images
	if mediaDir != "" {
		router.Static("/media", mediaDir)
	}

	root := router.Group("/api")
	{
		authHandler.RegisterRoutes(root)
		userHandler.RegisterRoutes(root)
		recipeHandler.RegisterRoutes(root)
		catalogHandler.RegisterRoutes(root)
	}

	return router
}
