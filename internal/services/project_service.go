package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/events"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("a project with this name already exists")
)

// ProjectService handles project business logic. Every operation is scoped
// to the calling user.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	publisher   events.Publisher
	now         func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, publisher events.Publisher) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	OwnerID     uint64
	Name        string
	Description string
}

// UpdateProjectInput carries the mutable project fields. Nil fields are
// left unchanged.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// List returns the user's projects
func (s *ProjectService) List(ctx context.Context, userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Create creates a project owned by input.OwnerID
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if name == "" {
		return nil, invalid("name is required")
	}
	if description == "" {
		return nil, invalid("description is required")
	}
	if len(name) > 255 {
		return nil, invalid("name must be at most 255 characters")
	}

	now := s.now()
	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectExists
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectCreated, input.OwnerID, project.ID))
	return project, nil
}

// Get returns one of the user's projects
func (s *ProjectService) Get(ctx context.Context, userID, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// Update changes the supplied fields and refreshes updated_at
func (s *ProjectService) Update(ctx context.Context, userID, id uint64, input UpdateProjectInput) (*models.Project, error) {
	fields := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		if len(name) > 255 {
			return nil, invalid("name must be at most 255 characters")
		}
		fields["name"] = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, invalid("description cannot be empty")
		}
		fields["description"] = description
	}

	if len(fields) == 0 {
		return s.Get(ctx, userID, id)
	}
	fields["updated_at"] = s.now()

	if err := s.projectRepo.Update(ctx, userID, id, fields); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrProjectExists
		default:
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectUpdated, userID, id))
	return s.Get(ctx, userID, id)
}

// Delete removes the project together with its tasks
func (s *ProjectService) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.projectRepo.DeleteWithTasks(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.ProjectDeleted, userID, id))
	return nil
}

// Search returns the user's projects whose name contains q, ignoring case
func (s *ProjectService) Search(ctx context.Context, userID uint64, q string) ([]models.Project, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("Missing search query")
	}

	projects, err := s.projectRepo.SearchByName(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return projects, nil
}
