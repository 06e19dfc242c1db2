package routes

import (
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CreateAliasHandler registers an alternate name for an existing entity.
// Alias chains are flattened on write, so reads only ever follow one hop.
func CreateAliasHandler(c echo.Context) error {
	type createAliasParams struct {
		BookID string `param:"id" validate:"required"`
		From   string `json:"from" validate:"required"`
		To     string `json:"to" validate:"required"`
	}

	type createAliasResponse struct {
		Message string `json:"message"`
		From    string `json:"from,omitempty"`
		To      string `json:"to,omitempty"`
	}

	params := new(createAliasParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, createAliasResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, createAliasResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	target, err := storage.GetEntityNode(ctx, params.BookID, params.To)
	if err != nil {
		logger.Error("Failed to resolve alias target", "book_id", params.BookID, "to", params.To, "err", err)
		return c.JSON(http.StatusInternalServerError, createAliasResponse{
			Message: "Internal server error",
		})
	}
	if target == nil {
		return c.JSON(http.StatusNotFound, createAliasResponse{
			Message: "Alias target not found",
		})
	}

	if err := storage.CreateAlias(ctx, params.BookID, params.From, params.To); err != nil {
		logger.Error("Failed to create alias", "book_id", params.BookID, "from", params.From, "to", params.To, "err", err)
		return c.JSON(http.StatusInternalServerError, createAliasResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createAliasResponse{
		Message: "Alias created",
		From:    params.From,
		To:      target.Name,
	})
}
