package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/dto"
	"github.com/yukikurage/task-insights-api/internal/services"
)

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
	log               *zap.Logger
}

func NewStatisticsHandler(statisticsService *services.StatisticsService, log *zap.Logger) *StatisticsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatisticsHandler{statisticsService: statisticsService, log: log}
}

// GetTaskStatusDistribution returns the task count per status
func (h *StatisticsHandler) GetTaskStatusDistribution(c *gin.Context) {
	distribution, err := h.statisticsService.StatusDistribution(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusDistribution(distribution))
}

// GetUserTaskStatusDistribution returns a user's task count per status
func (h *StatisticsHandler) GetUserTaskStatusDistribution(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	distribution, err := h.statisticsService.UserStatusDistribution(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusDistribution(distribution))
}

func (h *StatisticsHandler) GetCategoriesWithMostTasks(c *gin.Context) {
	usage, err := h.statisticsService.CategoriesByUsage(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryUsageDTOs(usage))
}

func (h *StatisticsHandler) GetMostUsedTags(c *gin.Context) {
	usage, err := h.statisticsService.TagsByUsage(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagUsageDTOs(usage))
}

// GetTasksCompletedByDay returns completed task counts keyed by YYYY-MM-DD
// (?start_date=&end_date=, both inclusive)
func (h *StatisticsHandler) GetTasksCompletedByDay(c *gin.Context) {
	start, ok := parseTimeQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseTimeQuery(c, "end_date")
	if !ok {
		return
	}

	counts, err := h.statisticsService.TasksCompletedByDay(c.Request.Context(), start, end)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

func (h *StatisticsHandler) GetUserCompletionRate(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	rate, err := h.statisticsService.UserCompletionRate(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionRateResponse(*rate))
}

func (h *StatisticsHandler) GetOverdueTasks(c *gin.Context) {
	count, err := h.statisticsService.OverdueCount(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.OverdueResponse{OverdueTasks: count})
}

func (h *StatisticsHandler) GetUserOverdueTasks(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	count, err := h.statisticsService.UserOverdueCount(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.OverdueResponse{UserID: &userID, OverdueTasks: count})
}

// GetTaskPriorityDistribution returns the task count per priority; no priority counts as 0
func (h *StatisticsHandler) GetTaskPriorityDistribution(c *gin.Context) {
	distribution, err := h.statisticsService.PriorityDistribution(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPriorityDistribution(distribution))
}

func (h *StatisticsHandler) GetUserTaskPriorityDistribution(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	distribution, err := h.statisticsService.UserPriorityDistribution(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPriorityDistribution(distribution))
}
