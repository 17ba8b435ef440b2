package handlers

import (
	"errors"
	"io"
	"net/http"

	"taskify/server/internal/dto"
	"taskify/server/internal/middleware"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// owner reads the caller set by RequireAuth. It writes the 401 itself.
func owner(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewError(dto.CodeMissingToken, "Authorization header is required"))
	}
	return id, ok
}

// taskID maps a malformed id to uuid.Nil, which no stored task has, so it
// ends up as an ordinary not-found.
func taskID(c *gin.Context) uuid.UUID {
	return uuid.FromStringOrNil(c.Param("id"))
}

func (h *TaskHandler) List(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Message: "Tasks retrieved successfully",
		Tasks:   tasks,
		Count:   len(tasks),
	})
}

func (h *TaskHandler) Get(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id := taskID(c)

	task, err := h.taskService.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondTaskError(c, err, "view")
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task retrieved successfully", Task: task})
}

func (h *TaskHandler) Create(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), ownerID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskResponse{Message: "Task created successfully", Task: task})
}

func (h *TaskHandler) Update(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	id := taskID(c)

	task, err := h.taskService.Update(c.Request.Context(), ownerID, id, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Completed:   req.Completed,
	})
	if err != nil {
		respondTaskError(c, err, "update")
		return
	}

	c.JSON(http.StatusOK, dto.TaskResponse{Message: "Task updated successfully", Task: task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	ownerID, ok := owner(c)
	if !ok {
		return
	}
	id := taskID(c)

	deleted, err := h.taskService.Delete(c.Request.Context(), ownerID, id)
	if err != nil {
		respondTaskError(c, err, "delete")
		return
	}

	c.JSON(http.StatusOK, dto.DeleteTaskResponse{
		Message:     "Task deleted successfully",
		DeletedTask: dto.DeletedTaskSummary{ID: deleted.ID, Title: deleted.Title},
	})
}
