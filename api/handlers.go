package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo-api/models"
	"todo-api/validation"
)

const maxBodyBytes = 1 << 20

// TaskStore is the persistence the handlers need. *storage.Store satisfies it.
type TaskStore interface {
	List() ([]models.Task, error)
	Get(id int64) (*models.Task, error)
	Create(d models.Draft) (*models.Task, error)
	Update(id int64, p models.Patch) (*models.Task, error)
	Delete(id int64) (bool, error)
}

// Handler serves the task endpoints.
type Handler struct {
	store     TaskStore
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewHandler(store TaskStore, v *validation.Validator, logger *slog.Logger) *Handler {
	if v == nil {
		v = validation.New()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{store: store, validator: v, logger: logger, now: time.Now}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.now().UTC(),
	})
}

// GET /tasks
func (h *Handler) listTasks(c *gin.Context) {
	tasks, err := h.store.List()
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/:id
func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.store.Get(id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgTaskNotFound})
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /tasks
func (h *Handler) createTask(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}

	draft, err := h.validator.Create(payload)
	if err != nil {
		if errs, isValidation := validation.AsErrors(err); isValidation {
			c.JSON(http.StatusBadRequest, gin.H{"detail": fieldErrorList(errs)})
			return
		}
		h.abortWithError(c, err)
		return
	}

	task, err := h.store.Create(draft)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	h.logger.Info("task created", "id", task.ID, "request_id", requestID(c))
	c.JSON(http.StatusCreated, task)
}

// PUT and PATCH /tasks/:id
func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgEmptyUpdate})
		return
	}

	patch, err := h.validator.Update(payload)
	if err != nil {
		if errs, isValidation := validation.AsErrors(err); isValidation && len(errs) > 0 {
			first := errs[0]
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": first.Message,
				"type":   string(first.Kind),
				"loc":    []string{"body", first.Field},
			})
			return
		}
		h.abortWithError(c, err)
		return
	}
	// Only unknown keys.
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgEmptyUpdate})
		return
	}

	task, err := h.store.Update(id, patch)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgTaskNotFound})
		return
	}
	h.logger.Info("task updated", "id", id, "request_id", requestID(c))
	c.JSON(http.StatusOK, task)
}

// DELETE /tasks/:id
func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	deleted, err := h.store.Delete(id)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgTaskNotFound})
		return
	}
	h.logger.Info("task deleted", "id", id, "request_id", requestID(c))
	c.JSON(http.StatusOK, gin.H{"detail": msgTaskDeleted})
}

// taskID parses the :id path parameter and answers 422 when it is not an integer.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": msgInvalidTaskID})
		return 0, false
	}
	return id, true
}

// readPayload reads a JSON object body. Numbers stay json.Number so the
// validator can tell 3 from 3.5 and "3".
func readPayload(c *gin.Context) (map[string]any, bool) {
	if !strings.EqualFold(c.ContentType(), gin.MIMEJSON) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"detail": msgUnsupportedMedia})
		return nil, false
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": msgBodyTooLarge})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgInvalidJSON})
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil || dec.More() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgInvalidJSON})
		return nil, false
	}
	return payload, true
}

func fieldErrorList(errs validation.Errors) []gin.H {
	out := make([]gin.H, 0, len(errs))
	for _, fe := range errs {
		out = append(out, gin.H{
			"loc":  []string{"body", fe.Field},
			"msg":  fe.Message,
			"type": string(fe.Kind),
		})
	}
	return out
}
