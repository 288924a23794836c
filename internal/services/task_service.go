package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/events"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskExists   = errors.New("a task with this title already exists in the project")
)

// dueDateLayouts are tried in order. Layouts without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	publisher   events.Publisher
	now         func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, publisher events.Publisher) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// CreateTaskInput represents input for creating a task. Pointer fields
// distinguish "absent" from zero values.
type CreateTaskInput struct {
	OwnerID     uint64
	Title       string
	Description *string
	DueDate     string
	Priority    *int
	ProjectID   *uint64
}

// UpdateTaskInput carries the mutable task fields. Nil fields are left
// unchanged; server controlled columns are not representable.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *int
	Completed   *bool
}

// List returns every task the user owns
func (s *TaskService) List(ctx context.Context, userID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByProject returns the user's tasks in a project without checking the
// project itself.
func (s *TaskService) ListByProject(ctx context.Context, userID, projectID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByProject(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListByOwnedProject rejects the call up front unless the user owns the
// project, then lists its tasks.
func (s *TaskService) ListByOwnedProject(ctx context.Context, userID, projectID uint64) ([]models.Task, error) {
	if _, err := s.projectRepo.FindOwned(ctx, userID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return s.ListByProject(ctx, userID, projectID)
}

// Create validates and inserts a task. Checks run in a fixed order and the
// first failure is returned.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return nil, invalid("title is required")
	case strings.TrimSpace(input.DueDate) == "":
		return nil, invalid("due_date is required")
	case input.Priority == nil:
		return nil, invalid("priority is required")
	case input.ProjectID == nil || *input.ProjectID == 0:
		return nil, invalid("project_id is required")
	}
	if len(title) > 255 {
		return nil, invalid("title must be at most 255 characters")
	}

	if err := validatePriority(*input.Priority); err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !dueDate.After(now) {
		return nil, invalid("due_date must be in the future")
	}

	project, err := s.projectRepo.FindByID(ctx, *input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if err := AssertOwns(input.OwnerID, project); err != nil {
		return nil, ErrProjectNotFound
	}

	task := &models.Task{
		Title:       title,
		Description: normalizeDescription(input.Description),
		DueDate:     dueDate,
		Priority:    *input.Priority,
		ProjectID:   project.ID,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTaskExists
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.TaskCreated, input.OwnerID, task.ID))
	return task, nil
}

// Get returns one of the user's tasks
func (s *TaskService) Get(ctx context.Context, userID, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// Update changes the supplied fields and refreshes updated_at
func (s *TaskService) Update(ctx context.Context, userID, id uint64, input UpdateTaskInput) (*models.Task, error) {
	fields := map[string]any{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		if len(title) > 255 {
			return nil, invalid("title must be at most 255 characters")
		}
		fields["title"] = title
	}
	if input.Description != nil {
		if description := normalizeDescription(input.Description); description != nil {
			fields["description"] = *description
		} else {
			fields["description"] = nil
		}
	}
	if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		fields["due_date"] = dueDate
	}
	if input.Priority != nil {
		if err := validatePriority(*input.Priority); err != nil {
			return nil, err
		}
		fields["priority"] = *input.Priority
	}
	if input.Completed != nil {
		fields["completed"] = *input.Completed
	}

	if len(fields) == 0 {
		return s.Get(ctx, userID, id)
	}
	fields["updated_at"] = s.now()

	if err := s.taskRepo.Update(ctx, userID, id, fields); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrTaskExists
		default:
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}

	events.Emit(ctx, s.publisher, events.New(events.TaskUpdated, userID, id))
	return s.Get(ctx, userID, id)
}

// Delete removes one of the user's tasks
func (s *TaskService) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.TaskDeleted, userID, id))
	return nil
}

// Search returns the user's tasks whose title contains q, ignoring case
func (s *TaskService) Search(ctx context.Context, userID uint64, q string) ([]models.Task, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("Missing search query")
	}

	tasks, err := s.taskRepo.SearchByTitle(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

func validatePriority(priority int) error {
	if priority < constants.MinTaskPriority || priority > constants.MaxTaskPriority {
		return invalid("priority must be between %d and %d", constants.MinTaskPriority, constants.MaxTaskPriority)
	}
	return nil
}

func parseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, invalid("due_date must be a valid date")
}

// normalizeDescription maps blank descriptions to NULL.
func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
