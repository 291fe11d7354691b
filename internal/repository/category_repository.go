package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit("Tasks").Create(category).Error
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName finds a category by name
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, &models.Category{}, "id = ?", id)
}

func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db, &models.Category{}, "name = ?", name)
}

// List lists all categories
func (r *GormCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListWithTaskCount lists every category with its task count, busiest first.
// Ties are broken by ascending ID.
func (r *GormCategoryRepository) ListWithTaskCount(ctx context.Context) ([]CategoryUsage, error) {
	var counts []usageCount
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.id AS id, COUNT(tasks.id) AS task_count").
		Joins("LEFT JOIN tasks ON tasks.category_id = categories.id").
		Group("categories.id").
		Order("task_count DESC, categories.id ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return []CategoryUsage{}, nil
	}

	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", usageIDs(counts)).Find(&categories).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	usage := make([]CategoryUsage, 0, len(counts))
	for _, count := range counts {
		category, ok := byID[count.ID]
		if !ok {
			// deleted between the two queries
			continue
		}
		usage = append(usage, CategoryUsage{Category: category, TaskCount: count.TaskCount})
	}
	return usage, nil
}

// Update updates a category
func (r *GormCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit("Tasks").Save(category).Error
}

// Delete detaches the category from its tasks and deletes it
func (r *GormCategoryRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// usageCount is a row of an (id, task count) aggregate
type usageCount struct {
	ID        uint64
	TaskCount int64
}

func usageIDs(counts []usageCount) []uint64 {
	ids := make([]uint64, len(counts))
	for i, c := range counts {
		ids[i] = c.ID
	}
	return ids
}
