package routes

import (
	"encoding/json"
	"net/http"

	"github.com/inkgraph/backend/internal/queue"
	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StartBatchHandler enqueues a context-free batch extraction job.
func StartBatchHandler(c echo.Context) error {
	type startBatchBody struct {
		BookID  string `param:"id" validate:"required"`
		Workers int    `json:"workers"`
	}

	type startBatchResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
	}

	data := new(startBatchBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, startBatchResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, startBatchResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, startBatchResponse{
			Message: "Unauthorized",
		})
	}

	queueData := queue.BatchJobMsg{
		Message: "Batch extraction requested",
		BookID:  data.BookID,
		Workers: data.Workers,
	}
	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, startBatchResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.BatchQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to batch_queue", "book_id", data.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, startBatchResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, startBatchResponse{
		Message: "Batch extraction queued",
		BookID:  data.BookID,
	})
}
