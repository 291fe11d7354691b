package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/dto"
	apierrors "github.com/yukikurage/task-insights-api/internal/errors"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{userService: userService, log: log}
}

// CreateUser registers a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListUsers lists users. ?active=true keeps active users only and ?role=
// restricts to one role.
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		users []models.User
		err   error
	)
	switch {
	case c.Query("role") != "":
		users, err = h.userService.ListUsersByRole(ctx, models.UserRole(c.Query("role")))
	case c.Query("active") != "":
		activeOnly, parseErr := strconv.ParseBool(c.Query("active"))
		if parseErr != nil {
			apierrors.BadRequest(c, "Invalid active flag")
			return
		}
		if activeOnly {
			users, err = h.userService.ListActiveUsers(ctx)
		} else {
			users, err = h.userService.ListUsers(ctx)
		}
	default:
		users, err = h.userService.ListUsers(ctx)
	}
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// GetUser returns a user by ID
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetUserByUsername returns a user by username
func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	user, err := h.userService.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser updates the supplied fields of a user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.InvalidBody(c, err)
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, services.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser deletes a user and the tasks it owns
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	deleted(c, "User")
}

// GetUserTaskCount returns the number of tasks owned by a user
func (h *UserHandler) GetUserTaskCount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	count, err := h.userService.CountUserTasks(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserTaskCountResponse{UserID: id, TaskCount: count})
}
