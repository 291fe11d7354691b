package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/dto"
	apierrors "github.com/yukikurage/task-insights-api/internal/errors"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/services"
	"github.com/yukikurage/task-insights-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{taskService: taskService, log: log}
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), toTaskInput(req))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task with its user, category and tags
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListTasks returns every task
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context())
	h.respondTasks(c, tasks, err)
}

// ListTasksPaginated returns one page of tasks (?page=1&limit=20)
func (h *TaskHandler) ListTasksPaginated(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasksPaginated(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks, total, params))
}

// ListTasksByUser returns the tasks owned by a user
func (h *TaskHandler) ListTasksByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByUser(c.Request.Context(), userID)
	h.respondTasks(c, tasks, err)
}

// ListTasksByUserPaginated returns one page of a user's tasks
func (h *TaskHandler) ListTasksByUserPaginated(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasksByUserPaginated(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toTaskListResponse(tasks, total, params))
}

func (h *TaskHandler) ListTasksByCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByCategory(c.Request.Context(), categoryID)
	h.respondTasks(c, tasks, err)
}

func (h *TaskHandler) ListTasksByStatus(c *gin.Context) {
	tasks, err := h.taskService.ListTasksByStatus(c.Request.Context(), models.TaskStatus(c.Param("status")))
	h.respondTasks(c, tasks, err)
}

func (h *TaskHandler) ListTasksByTag(c *gin.Context) {
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByTag(c.Request.Context(), tagID)
	h.respondTasks(c, tasks, err)
}

// ListTasksDueBetween returns tasks due within [start, end]
func (h *TaskHandler) ListTasksDueBetween(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksDueBetween(c.Request.Context(), start, end)
	h.respondTasks(c, tasks, err)
}

// SearchTasks searches a user's tasks by keyword (?user_id=&keyword=)
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, ok := parseIDQuery(c, "user_id")
	if !ok {
		return
	}

	tasks, err := h.taskService.SearchTasks(c.Request.Context(), userID, c.Query("keyword"))
	h.respondTasks(c, tasks, err)
}

// UpdateTask replaces a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, toTaskInput(req))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus changes only the status (?status=COMPLETED)
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		apierrors.MissingField(c, "status")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), id, models.TaskStatus(status))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	deleted(c, "Task")
}

// CountTasksByUserAndStatus counts a user's tasks in one status
func (h *TaskHandler) CountTasksByUserAndStatus(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	status := models.TaskStatus(c.Param("status"))

	count, err := h.taskService.CountTasksByUserAndStatus(c.Request.Context(), userID, status)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskCountResponse{UserID: userID, Status: status, Count: count})
}

// AddTag links a tag to a task
func (h *TaskHandler) AddTag(c *gin.Context) {
	h.changeTag(c, h.taskService.AddTagToTask)
}

// RemoveTag unlinks a tag from a task
func (h *TaskHandler) RemoveTag(c *gin.Context) {
	h.changeTag(c, h.taskService.RemoveTagFromTask)
}

func (h *TaskHandler) changeTag(c *gin.Context, change func(ctx context.Context, taskID, tagID uint64) (*models.Task, error)) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}

	task, err := change(c.Request.Context(), taskID, tagID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func (h *TaskHandler) respondTasks(c *gin.Context, tasks []models.Task, err error) {
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

func toTaskInput(req dto.TaskRequest) services.TaskInput {
	return services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Ptr(),
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		TagIDs:      req.TagIDs,
	}
}

func toTaskListResponse(tasks []models.Task, total int64, params utils.PaginationParams) dto.TaskListResponse {
	return dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
		TotalPages: params.TotalPages(total),
	}
}
