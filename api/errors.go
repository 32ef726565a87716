package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/storage"
)

const (
	msgTaskNotFound     = "Task not found"
	msgTaskDeleted      = "Task deleted successfully"
	msgInvalidTaskID    = "Invalid task_id format"
	msgInvalidJSON      = "Invalid JSON"
	msgEmptyUpdate      = "Request body is empty or missing required fields"
	msgUnsupportedMedia = "Content-Type header missing or unsupported"
	msgBodyTooLarge     = "Request body too large"
	msgNotFound         = "Not Found"
	msgMethodNotAllowed = "Method Not Allowed"
	msgStorageFailure   = "Failed to save tasks to persistent storage"
	msgStoreCorrupted   = "Task store is corrupted"
	msgStoreClosed      = "Task store is not available"
	msgInvalidTask      = "Task data violates record constraints"
	msgInternal         = "Internal Server Error"
)

// abortWithError maps a store error to a status code and detail message.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, detail := http.StatusInternalServerError, msgInternal
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		status, detail = http.StatusUnprocessableEntity, msgInvalidTaskID
	case errors.Is(err, storage.ErrInvalidTask):
		status, detail = http.StatusBadRequest, msgInvalidTask
	case errors.Is(err, storage.ErrParse):
		detail = msgStoreCorrupted
	case errors.Is(err, storage.ErrStorage):
		detail = msgStorageFailure
	case errors.Is(err, storage.ErrClosed):
		status, detail = http.StatusServiceUnavailable, msgStoreClosed
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", requestID(c),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": msgMethodNotAllowed})
}
