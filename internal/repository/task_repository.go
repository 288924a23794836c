package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOwned finds a task by ID among the owner's tasks
func (r *GormTaskRepository) FindOwned(ctx context.Context, ownerID, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByOwner lists all of the owner's tasks
func (r *GormTaskRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Task, error) {
	return r.list(ctx, r.db.Scopes(database.OwnedBy(ownerID)))
}

// ListByProject lists the owner's tasks in a project
func (r *GormTaskRepository) ListByProject(ctx context.Context, ownerID, projectID uint64) ([]models.Task, error) {
	return r.list(ctx, r.db.Scopes(database.OwnedBy(ownerID)).Where("project_id = ?", projectID))
}

// SearchByTitle lists the owner's tasks whose title contains term
func (r *GormTaskRepository) SearchByTitle(ctx context.Context, ownerID uint64, term string) ([]models.Task, error) {
	return r.list(ctx, r.db.Scopes(database.OwnedBy(ownerID), database.Contains("title", term)))
}

// Update applies fields to the owner's task
func (r *GormTaskRepository) Update(ctx context.Context, ownerID, id uint64, fields map[string]any) error {
	return updateOwned(r.db.WithContext(ctx), &models.Task{}, ownerID, id, fields)
}

// Delete deletes the owner's task
func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id uint64) error {
	res := r.db.WithContext(ctx).Scopes(database.OwnedBy(ownerID)).Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTaskRepository) list(ctx context.Context, query *gorm.DB) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := query.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
