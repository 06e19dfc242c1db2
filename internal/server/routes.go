package server

import (
	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Build routes
	apiRoutes.POST("/books/:id/build", routes.StartBuildHandler, middleware.RequirePermission("book.build"))
	apiRoutes.POST("/books/:id/batch", routes.StartBatchHandler, middleware.RequirePermission("book.batch"))

	// Progress routes
	apiRoutes.GET("/books/:id/progress", routes.GetProgressHandler)
	apiRoutes.DELETE("/books/:id/progress", routes.ResetProgressHandler, middleware.RequirePermission("book.reset"))

	// Chapter routes
	apiRoutes.PUT("/books/:id/chapters/:chapter", routes.PutChapterHandler, middleware.RequirePermission("book.upload"))
	apiRoutes.DELETE("/books/:id/chapters", routes.DeleteChaptersHandler, middleware.RequirePermission("book.reset"))

	// Graph routes
	apiRoutes.GET("/books/:id/entities", routes.GetEntitiesHandler)
	apiRoutes.POST("/books/:id/aliases", routes.CreateAliasHandler, middleware.RequirePermission("book.build"))
	apiRoutes.GET("/books/:id/entities/:name", routes.GetEntityHandler)
	apiRoutes.GET("/books/:id/categories", routes.GetCategoriesHandler)
	apiRoutes.POST("/books/:id/similar", routes.SearchSimilarHandler)
}
