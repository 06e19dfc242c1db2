package routes

import (
	"encoding/json"
	"net/http"

	"github.com/inkgraph/backend/internal/queue"
	"github.com/inkgraph/backend/internal/server/middleware"
	"github.com/inkgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StartBuildHandler enqueues an incremental build job for a book.
func StartBuildHandler(c echo.Context) error {
	type startBuildBody struct {
		BookID string `param:"id" validate:"required"`

		ChunkLength      int  `json:"chunk_length"`
		BFSDepth         int  `json:"bfs_depth"`
		MaxSummaries     int  `json:"max_summaries"`
		MaxContextTokens int  `json:"max_context_tokens"`
		FailFast         bool `json:"fail_fast"`
	}

	type startBuildResponse struct {
		Message string `json:"message"`
		BookID  string `json:"book_id,omitempty"`
	}

	data := new(startBuildBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, startBuildResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, startBuildResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, startBuildResponse{
			Message: "Unauthorized",
		})
	}

	queueData := queue.BuildJobMsg{
		Message: "Build requested",
		BookID:  data.BookID,

		ChunkLength:      data.ChunkLength,
		BFSDepth:         data.BFSDepth,
		MaxSummaries:     data.MaxSummaries,
		MaxContextTokens: data.MaxContextTokens,
		FailFast:         data.FailFast,
	}
	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, startBuildResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.BuildQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to build_queue", "book_id", data.BookID, "err", err)
		return c.JSON(http.StatusInternalServerError, startBuildResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, startBuildResponse{
		Message: "Build queued",
		BookID:  data.BookID,
	})
}
