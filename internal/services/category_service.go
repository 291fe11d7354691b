package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/repository"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrNameRequired      = errors.New("name is required")
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	log          *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, log *zap.Logger) *CategoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		log:          log.Named("categories"),
	}
}

// CategoryInput represents input for creating or replacing a category
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// CreateCategory creates a category with a unique name
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
		Color:       input.Color,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("category created", zap.Uint64("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// GetCategory returns a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListCategoriesByTaskCount returns categories with their task counts, busiest first
func (s *CategoryService) ListCategoriesByTaskCount(ctx context.Context) ([]repository.CategoryUsage, error) {
	usage, err := s.categoryRepo.ListWithTaskCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count category usage: %w", err)
	}
	return usage, nil
}

// UpdateCategory replaces a category's fields. The name is only re-checked
// for uniqueness when it changes.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint64, input CategoryInput) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if name != category.Name {
		if err := s.ensureNameFree(ctx, name); err != nil {
			return nil, err
		}
	}

	category.Name = name
	category.Description = input.Description
	category.Color = input.Color

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("category updated", zap.Uint64("category_id", category.ID))
	return category, nil
}

// DeleteCategory deletes a category; its tasks are kept without a category
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint64) error {
	if err := ensureCategoryExists(ctx, s.categoryRepo, id); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("category deleted", zap.Uint64("category_id", id))
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string) error {
	taken, err := s.categoryRepo.ExistsByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return ErrCategoryNameTaken
	}
	return nil
}

func ensureCategoryExists(ctx context.Context, repo repository.CategoryRepository, id uint64) error {
	ok, err := repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}
