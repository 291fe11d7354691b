package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/models"
	"github.com/yukikurage/task-insights-api/internal/services"
)

const defaultPassword = "password"

type sampleTask struct {
	title       string
	description string
	user        string
	category    string
	tags        []string
	status      models.TaskStatus
	priority    int
	dueInDays   int
}

// Run fills an empty database with sample users, categories, tags and tasks.
// It does nothing when at least one user already exists.
func Run(ctx context.Context, svc *services.Services, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("seed")

	existing, err := svc.Users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		log.Info("database already has data, skipping seed", zap.Int("users", len(existing)))
		return nil
	}

	log.Info("seeding sample data")

	users := map[string]uint64{}
	for _, u := range []services.CreateUserInput{
		{Username: "admin", Email: "admin@example.com", FullName: "Administrator", Role: models.RoleAdmin},
		{Username: "user1", Email: "user1@example.com", FullName: "User One", Role: models.RoleUser},
		{Username: "user2", Email: "user2@example.com", FullName: "User Two", Role: models.RoleUser},
	} {
		u.Password = defaultPassword
		user, err := svc.Users.CreateUser(ctx, u)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		users[user.Username] = user.ID
	}

	categories := map[string]uint64{}
	for _, c := range []services.CategoryInput{
		{Name: "Work", Description: "Work related tasks", Color: "#FF5733"},
		{Name: "Study", Description: "Study related tasks", Color: "#33A8FF"},
		{Name: "Life", Description: "Everyday errands", Color: "#33FF57"},
	} {
		category, err := svc.Categories.CreateCategory(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
		categories[category.Name] = category.ID
	}

	tags := map[string]uint64{}
	for _, t := range []services.TagInput{
		{Name: "Urgent", Color: "#FF0000"},
		{Name: "Important", Color: "#FF9900"},
		{Name: "Easy", Color: "#00FF00"},
		{Name: "Hard", Color: "#0000FF"},
	} {
		tag, err := svc.Tags.CreateTag(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to seed tag %s: %w", t.Name, err)
		}
		tags[tag.Name] = tag.ID
	}

	now := time.Now()
	for _, t := range []sampleTask{
		{"Finish project report", "Summarise last week's progress and submit the report.", "admin", "Work", []string{"Urgent", "Important"}, models.TaskStatusPending, 1, 2},
		{"Learn gin", "Work through routing, binding and middleware.", "user1", "Study", []string{"Important"}, models.TaskStatusInProgress, 2, 5},
		{"Buy groceries", "Shampoo, soap and toothpaste.", "user2", "Life", []string{"Easy"}, models.TaskStatusPending, 3, 1},
		{"Workout plan", "Plan weekly running and strength sessions.", "user1", "Life", []string{"Important", "Hard"}, models.TaskStatusPending, 2, 3},
		{"Prepare meeting", "Slides and material for Monday's project meeting.", "admin", "Work", []string{"Urgent", "Hard"}, models.TaskStatusInProgress, 1, 1},
	} {
		userID := users[t.user]
		categoryID := categories[t.category]
		priority := t.priority
		due := now.AddDate(0, 0, t.dueInDays)

		tagIDs := make([]uint64, 0, len(t.tags))
		for _, name := range t.tags {
			tagIDs = append(tagIDs, tags[name])
		}

		if _, err := svc.Tasks.CreateTask(ctx, services.TaskInput{
			Title:       t.title,
			Description: t.description,
			Status:      t.status,
			Priority:    &priority,
			DueDate:     &due,
			UserID:      &userID,
			CategoryID:  &categoryID,
			TagIDs:      tagIDs,
		}); err != nil {
			return fmt.Errorf("failed to seed task %q: %w", t.title, err)
		}
	}

	log.Info("sample data seeded",
		zap.Int("users", len(users)),
		zap.Int("categories", len(categories)),
		zap.Int("tags", len(tags)),
	)
	return nil
}
