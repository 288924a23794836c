package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// Lookups return gorm.ErrRecordNotFound when nothing matches; inserts and
// updates that hit a unique index return gorm.ErrDuplicatedKey.

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by exact, case-sensitive username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID regardless of owner
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// FindOwned finds a project by ID among the owner's projects
	FindOwned(ctx context.Context, ownerID, id uint64) (*models.Project, error)

	// ListByOwner lists the owner's projects
	ListByOwner(ctx context.Context, ownerID uint64) ([]models.Project, error)

	// SearchByName lists the owner's projects whose name contains term
	SearchByName(ctx context.Context, ownerID uint64, term string) ([]models.Project, error)

	// Update applies fields to the owner's project in a single statement
	Update(ctx context.Context, ownerID, id uint64, fields map[string]any) error

	// DeleteWithTasks deletes the owner's project and all of its tasks
	DeleteWithTasks(ctx context.Context, ownerID, id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOwned finds a task by ID among the owner's tasks
	FindOwned(ctx context.Context, ownerID, id uint64) (*models.Task, error)

	// ListByOwner lists all of the owner's tasks
	ListByOwner(ctx context.Context, ownerID uint64) ([]models.Task, error)

	// ListByProject lists the owner's tasks in a project
	ListByProject(ctx context.Context, ownerID, projectID uint64) ([]models.Task, error)

	// SearchByTitle lists the owner's tasks whose title contains term
	SearchByTitle(ctx context.Context, ownerID uint64, term string) ([]models.Task, error)

	// Update applies fields to the owner's task in a single statement
	Update(ctx context.Context, ownerID, id uint64, fields map[string]any) error

	// Delete deletes the owner's task
	Delete(ctx context.Context, ownerID, id uint64) error
}
