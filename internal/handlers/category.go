package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/dto"
	apierrors "github.com/yukikurage/task-insights-api/internal/errors"
	"github.com/yukikurage/task-insights-api/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	log             *zap.Logger
}

func NewCategoryHandler(categoryService *services.CategoryService, log *zap.Logger) *CategoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryHandler{categoryService: categoryService, log: log}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTOs(categories))
}

// ListCategoriesByTaskCount returns categories with their task counts, busiest first
func (h *CategoryHandler) ListCategoriesByTaskCount(c *gin.Context) {
	usage, err := h.categoryService.ListCategoriesByTaskCount(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryUsageDTOs(usage))
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory deletes a category; its tasks lose their category
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	deleted(c, "Category")
}
