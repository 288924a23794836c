package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID regardless of owner
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindOwned finds a project by ID among the owner's projects
func (r *GormProjectRepository) FindOwned(ctx context.Context, ownerID, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOwner lists the owner's projects
func (r *GormProjectRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// SearchByName lists the owner's projects whose name contains term
func (r *GormProjectRepository) SearchByName(ctx context.Context, ownerID uint64, term string) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID), database.Contains("name", term)).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update applies fields to the owner's project
func (r *GormProjectRepository) Update(ctx context.Context, ownerID, id uint64, fields map[string]any) error {
	return updateOwned(r.db.WithContext(ctx), &models.Project{}, ownerID, id, fields)
}

// DeleteWithTasks deletes the owner's project and its tasks in a transaction
func (r *GormProjectRepository) DeleteWithTasks(ctx context.Context, ownerID, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete all tasks in the project
		if err := tx.Scopes(database.OwnedBy(ownerID)).
			Where("project_id = ?", id).
			Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete project
		res := tx.Scopes(database.OwnedBy(ownerID)).Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

// updateOwned runs a single owner-scoped UPDATE. Some drivers report zero
// affected rows when no column value changed, so a zero count is confirmed
// with an existence check before it becomes gorm.ErrRecordNotFound.
func updateOwned(db *gorm.DB, model any, ownerID, id uint64, fields map[string]any) error {
	res := db.Model(model).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
