package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/constants"
	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrInvalidUsername      = errors.New("username must be between 3 and 50 characters")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("invalid user role")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// UserService handles user business logic
type UserService struct {
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		log:      log.Named("users"),
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     models.UserRole
	Active   *bool
}

// UpdateUserInput represents input for updating a user. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	FullName *string
	Role     *models.UserRole
	Active   *bool
}

// CreateUser creates a user after checking that username and email are free.
// Without a password a random one is hashed so the account cannot be logged into.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	if err := s.ensureUsernameFree(ctx, username); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = uuid.NewString()
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         role,
		Active:       active,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateUserError(ctx, user)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("user created", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// GetUserByUsername returns a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsers(ctx, repository.UserFilter{})
}

// ListActiveUsers returns users whose active flag is set
func (s *UserService) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsers(ctx, repository.UserFilter{ActiveOnly: true})
}

// ListUsersByRole returns users holding the given role
func (s *UserService) ListUsersByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.listUsers(ctx, repository.UserFilter{Role: &role})
}

func (s *UserService) listUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser updates a user. Uniqueness is only re-checked for a username or
// email that actually changes.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != user.Username {
			if err := s.ensureUsernameFree(ctx, username); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateUserError(ctx, user)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("user updated", zap.Uint64("user_id", user.ID))
	return user, nil
}

// DeleteUser deletes a user together with the tasks it owns
func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if err := s.ensureUserExists(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("user deleted", zap.Uint64("user_id", id))
	return nil
}

// CountUserTasks returns the number of tasks owned by a user
func (s *UserService) CountUserTasks(ctx context.Context, id uint64) (int64, error) {
	if err := s.ensureUserExists(ctx, id); err != nil {
		return 0, err
	}

	count, err := s.userRepo.CountTasks(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count user tasks: %w", err)
	}
	return count, nil
}

func (s *UserService) ensureUserExists(ctx context.Context, id uint64) error {
	return ensureUserExists(ctx, s.userRepo, id)
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

// duplicateUserError works out which unique column a concurrent writer claimed
func (s *UserService) duplicateUserError(ctx context.Context, user *models.User) error {
	if existing, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil && existing.ID != user.ID {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// ensureUserExists maps a missing user to ErrUserNotFound
func ensureUserExists(ctx context.Context, repo repository.UserRepository, id uint64) error {
	ok, err := repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if n := len([]rune(username)); n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}
