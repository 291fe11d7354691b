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
	ErrTagNotFound  = errors.New("tag not found")
	ErrTagNameTaken = errors.New("tag name already exists")
)

// TagService handles tag business logic
type TagService struct {
	tagRepo repository.TagRepository
	log     *zap.Logger
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository, log *zap.Logger) *TagService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TagService{
		tagRepo: tagRepo,
		log:     log.Named("tags"),
	}
}

// TagInput represents input for creating or replacing a tag
type TagInput struct {
	Name  string
	Color string
}

func (s *TagService) CreateTag(ctx context.Context, input TagInput) (*models.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	tag := &models.Tag{Name: name, Color: input.Color}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagNameTaken
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("tag created", zap.Uint64("tag_id", tag.ID), zap.String("name", tag.Name))
	return tag, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint64) (*models.Tag, error) {
	tag, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ListTagsByUsage returns tags with the number of tasks carrying them, most used first
func (s *TagService) ListTagsByUsage(ctx context.Context) ([]repository.TagUsage, error) {
	usage, err := s.tagRepo.ListWithTaskCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tag usage: %w", err)
	}
	return usage, nil
}

func (s *TagService) UpdateTag(ctx context.Context, id uint64, input TagInput) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if name != tag.Name {
		if err := s.ensureNameFree(ctx, name); err != nil {
			return nil, err
		}
	}

	tag.Name = name
	tag.Color = input.Color
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTagNameTaken
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("tag updated", zap.Uint64("tag_id", tag.ID))
	return tag, nil
}

// DeleteTag deletes a tag and detaches it from every task
func (s *TagService) DeleteTag(ctx context.Context, id uint64) error {
	if err := ensureTagExists(ctx, s.tagRepo, id); err != nil {
		return err
	}

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	logger.WithRequestID(ctx, s.log).Info("tag deleted", zap.Uint64("tag_id", id))
	return nil
}

func (s *TagService) ensureNameFree(ctx context.Context, name string) error {
	taken, err := s.tagRepo.ExistsByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check tag name: %w", err)
	}
	if taken {
		return ErrTagNameTaken
	}
	return nil
}

func ensureTagExists(ctx context.Context, repo repository.TagRepository, id uint64) error {
	ok, err := repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check tag: %w", err)
	}
	if !ok {
		return ErrTagNotFound
	}
	return nil
}
