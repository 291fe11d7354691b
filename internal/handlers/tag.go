package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/dto"
	apierrors "github.com/yukikurage/task-insights-api/internal/errors"
	"github.com/yukikurage/task-insights-api/internal/services"
)

type TagHandler struct {
	tagService *services.TagService
	log        *zap.Logger
}

func NewTagHandler(tagService *services.TagService, log *zap.Logger) *TagHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TagHandler{tagService: tagService, log: log}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

// ListTagsByUsage returns tags with their task counts, most used first
func (h *TagHandler) ListTagsByUsage(c *gin.Context) {
	usage, err := h.tagService.ListTagsByUsage(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagUsageDTOs(usage))
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), services.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	tag, err := h.tagService.UpdateTag(c.Request.Context(), id, services.TagInput{Name: req.Name, Color: req.Color})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	deleted(c, "Tag")
}
