package routes

import (
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetCategoriesHandler returns the distinct category vocabulary of a book.
func GetCategoriesHandler(c echo.Context) error {
	type getCategoriesParams struct {
		BookID string `param:"id" validate:"required"`
	}

	type getCategoriesResponse struct {
		Message    string   `json:"message"`
		Categories []string `json:"categories,omitempty"`
	}

	params := new(getCategoriesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getCategoriesResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getCategoriesResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	categories, err := storage.GetCategories(ctx, params.BookID)
	if err != nil {
		logger.Error("Failed to get categories", "book_id", params.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, getCategoriesResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getCategoriesResponse{
		Message:    "OK",
		Categories: categories,
	})
}
