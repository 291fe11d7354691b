package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/task-insights-api/internal/models"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Omit("Tasks").Create(tag).Error
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(ctx context.Context, id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName finds a tag by name
func (r *GormTagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByIDs returns the tags among ids that exist, ordered by ID
func (r *GormTagRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *GormTagRepository) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, r.db, &models.Tag{}, "id = ?", id)
}

func (r *GormTagRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db, &models.Tag{}, "name = ?", name)
}

// List lists all tags
func (r *GormTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListWithTaskCount lists every tag with the number of tasks carrying it,
// most used first. Ties are broken by ascending ID.
func (r *GormTagRepository) ListWithTaskCount(ctx context.Context) ([]TagUsage, error) {
	var counts []usageCount
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id AS id, COUNT(task_tags.task_id) AS task_count").
		Joins("LEFT JOIN task_tags ON task_tags.tag_id = tags.id").
		Group("tags.id").
		Order("task_count DESC, tags.id ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return []TagUsage{}, nil
	}

	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", usageIDs(counts)).Find(&tags).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	usage := make([]TagUsage, 0, len(counts))
	for _, count := range counts {
		if tag, ok := byID[count.ID]; ok {
			usage = append(usage, TagUsage{Tag: tag, TaskCount: count.TaskCount})
		}
	}
	return usage, nil
}

// Update updates a tag
func (r *GormTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Omit("Tasks").Save(tag).Error
}

// Delete removes the tag's task associations and deletes it
func (r *GormTagRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
