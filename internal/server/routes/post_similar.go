package routes

import (
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SearchSimilarHandler embeds the query text and returns the closest entity
// nodes by embedding distance.
func SearchSimilarHandler(c echo.Context) error {
	type searchSimilarBody struct {
		BookID string `param:"id" validate:"required"`
		Text   string `json:"text" validate:"required"`
		Limit  int32  `json:"limit"`
	}

	type searchSimilarResponse struct {
		Message  string              `json:"message"`
		Entities []common.EntityNode `json:"entities,omitempty"`
	}

	data := new(searchSimilarBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchSimilarResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchSimilarResponse{
			Message: "Invalid request body",
		})
	}
	if data.Limit <= 0 {
		data.Limit = 10
	}

	ctx := c.Request().Context()
	aiClient := c.(*middleware.AppContext).App.AiClient

	embedding, err := aiClient.GenerateEmbedding(ctx, []byte(data.Text))
	if err != nil {
		logger.Error("Failed to embed query", "book_id", data.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, searchSimilarResponse{
			Message: "Internal server error",
		})
	}

	storage := wikiStorage(c.(*middleware.AppContext))
	entities, err := storage.SearchSimilarEntities(ctx, data.BookID, embedding, data.Limit)
	if err != nil {
		logger.Error("Failed to search entities", "book_id", data.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, searchSimilarResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, searchSimilarResponse{
		Message:  "OK",
		Entities: entities,
	})
}
