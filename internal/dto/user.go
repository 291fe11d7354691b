package dto

import (
	"time"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never exposed.
type UserDTO struct {
	ID        uint64          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Role      models.UserRole `json:"role"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UserSummaryDTO is the short form of a user embedded in other resources
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Username string          `json:"username" binding:"required,notblank,min=3,max=50"`
	Email    string          `json:"email" binding:"required,email,max=255"`
	Password string          `json:"password" binding:"omitempty,min=6,max=72"`
	FullName string          `json:"full_name" binding:"max=255"`
	Role     models.UserRole `json:"role" binding:"omitempty,user_role"`
	Active   *bool           `json:"active"`
}

// UpdateUserRequest is the body of PUT /users/:id. Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Username *string          `json:"username" binding:"omitempty,notblank,min=3,max=50"`
	Email    *string          `json:"email" binding:"omitempty,email,max=255"`
	Password *string          `json:"password" binding:"omitempty,min=6,max=72"`
	FullName *string          `json:"full_name" binding:"omitempty,max=255"`
	Role     *models.UserRole `json:"role" binding:"omitempty,user_role"`
	Active   *bool            `json:"active"`
}

// UserTaskCountResponse is returned by GET /users/:id/task-count
type UserTaskCountResponse struct {
	UserID    uint64 `json:"user_id"`
	TaskCount int64  `json:"task_count"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserDTOs converts a slice of User models
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
