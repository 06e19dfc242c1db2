package routes

import (
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetProgressHandler returns the next chapter the build loop will consume.
func GetProgressHandler(c echo.Context) error {
	type getProgressParams struct {
		BookID string `param:"id" validate:"required"`
	}

	type getProgressResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
		Chapter int    `json:"chapter,omitempty"`
	}

	params := new(getProgressParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProgressResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getProgressResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	chapter, err := storage.GetProgress(ctx, params.BookID)
	if err != nil {
		logger.Error("Failed to get progress", "book_id", params.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, getProgressResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getProgressResponse{
		Message: "OK",
		BookID:  params.BookID,
		Chapter: chapter,
	})
}

// ResetProgressHandler rewinds a book's cursor to the first chapter. The
// graph itself is left alone; a rebuild merges on top of it.
func ResetProgressHandler(c echo.Context) error {
	type resetProgressParams struct {
		BookID string `param:"id" validate:"required"`
	}

	type resetProgressResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
	}

	params := new(resetProgressParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, resetProgressResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, resetProgressResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	if err := storage.ResetProgress(ctx, params.BookID); err != nil {
		logger.Error("Failed to reset progress", "book_id", params.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, resetProgressResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, resetProgressResponse{
		Message: "Progress reset",
		BookID:  params.BookID,
	})
}
