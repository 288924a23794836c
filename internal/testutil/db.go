package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbCounter atomic.Uint64

// NewTestDB returns a migrated in-memory SQLite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))

	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a placeholder digest.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "hashed",
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project owned by ownerID.
func CreateProject(t *testing.T, db *gorm.DB, ownerID uint64, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:        name,
		Description: name + " description",
		OwnerID:     ownerID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task in project, owned by the project's owner.
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, title string, dueDate time.Time) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:     title,
		DueDate:   dueDate,
		Priority:  2,
		ProjectID: project.ID,
		OwnerID:   project.OwnerID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
