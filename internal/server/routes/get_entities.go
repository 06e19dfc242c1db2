package routes

import (
	"net/http"

	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/common"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetEntitiesHandler lists every entity node of a book with its relations.
func GetEntitiesHandler(c echo.Context) error {
	type getEntitiesParams struct {
		BookID string `param:"id" validate:"required"`
	}

	type getEntitiesResponse struct {
		Message  string              `json:"message"`
		Entities []common.EntityNode `json:"entities,omitempty"`
	}

	params := new(getEntitiesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntitiesResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntitiesResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	entities, err := storage.ListEntityNodes(ctx, params.BookID)
	if err != nil {
		logger.Error("Failed to list entities", "book_id", params.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, getEntitiesResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getEntitiesResponse{
		Message:  "OK",
		Entities: entities,
	})
}

// GetEntityHandler returns one entity node, resolving aliases.
func GetEntityHandler(c echo.Context) error {
	type getEntityParams struct {
		BookID string `param:"id" validate:"required"`
		Name   string `param:"name" validate:"required"`
	}

	type getEntityResponse struct {
		Message string             `json:"message"`
		Entity  *common.EntityNode `json:"entity,omitempty"`
	}

	params := new(getEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getEntityResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	storage := wikiStorage(c.(*middleware.AppContext))

	entity, err := storage.GetEntityNode(ctx, params.BookID, params.Name)
	if err != nil {
		logger.Error("Failed to get entity", "book_id", params.BookID, "name", params.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getEntityResponse{
			Message: "Internal server error",
		})
	}
	if entity == nil {
		return c.JSON(http.StatusNotFound, getEntityResponse{
			Message: "Entity not found",
		})
	}

	return c.JSON(http.StatusOK, getEntityResponse{
		Message: "OK",
		Entity:  entity,
	})
}
