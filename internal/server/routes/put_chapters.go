package routes

import (
	"io"
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PutChapterHandler uploads one chapter's plain text into the corpus.
func PutChapterHandler(c echo.Context) error {
	type putChapterParams struct {
		BookID  string `param:"id" validate:"required"`
		Chapter int    `param:"chapter" validate:"required,min=1"`
	}

	type putChapterResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
		Chapter int    `json:"chapter,omitempty"`
	}

	params := new(putChapterParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, putChapterResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, putChapterResponse{
			Message: "Invalid request body",
		})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, putChapterResponse{
			Message: "Could not read chapter text",
		})
	}

	ctx := c.Request().Context()
	corpus := corpusStore(c.(*middleware.AppContext))

	if err := corpus.PutChapter(ctx, params.BookID, params.Chapter, string(body)); err != nil {
		logger.Error("Failed to store chapter", "book_id", params.BookID, "chapter", params.Chapter, "err", err)
		return c.JSON(http.StatusInternalServerError, putChapterResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, putChapterResponse{
		Message: "Chapter stored",
		BookID:  params.BookID,
		Chapter: params.Chapter,
	})
}

// DeleteChaptersHandler removes a book's entire corpus. The graph and the
// build cursor are untouched; pair with a progress reset for a full redo.
func DeleteChaptersHandler(c echo.Context) error {
	type deleteChaptersParams struct {
		BookID string `param:"id" validate:"required"`
	}

	type deleteChaptersResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
	}

	params := new(deleteChaptersParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteChaptersResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteChaptersResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	corpus := corpusStore(c.(*middleware.AppContext))

	if err := corpus.DeleteBook(ctx, params.BookID); err != nil {
		logger.Error("Failed to delete corpus", "book_id", params.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteChaptersResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteChaptersResponse{
		Message: "Corpus deleted",
		BookID:  params.BookID,
	})
}
