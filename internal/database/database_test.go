package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	return db
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, SQLitePath: ":memory:"})
		require.NoError(t, err, driver)
		require.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
}

func TestMigrate_UniqueProjectNamePerOwner(t *testing.T) {
	db := openTestDB(t)

	alice := models.User{Username: "alice", PasswordHash: "x", FirstName: "A", LastName: "A", Email: "a@example.com"}
	bob := models.User{Username: "bob", PasswordHash: "x", FirstName: "B", LastName: "B", Email: "b@example.com"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	require.NoError(t, db.Create(&models.Project{Name: "P1", Description: "d", OwnerID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Project{Name: "P1", Description: "d", OwnerID: bob.ID}).Error)

	err := db.Create(&models.Project{Name: "P1", Description: "d2", OwnerID: alice.ID}).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestScopes_ContainsIsLiteralAndOwnerScoped(t *testing.T) {
	db := openTestDB(t)

	owner := models.User{Username: "owner", PasswordHash: "x", FirstName: "O", LastName: "O", Email: "o@example.com"}
	other := models.User{Username: "other", PasswordHash: "x", FirstName: "O", LastName: "O", Email: "p@example.com"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&other).Error)

	for _, name := range []string{"Website Redesign", "100% done", "1000 done", "snake_case"} {
		require.NoError(t, db.Create(&models.Project{Name: name, Description: "d", OwnerID: owner.ID}).Error)
	}
	require.NoError(t, db.Create(&models.Project{Name: "website for other", Description: "d", OwnerID: other.ID}).Error)

	var found []models.Project
	require.NoError(t, db.Scopes(OwnedBy(owner.ID), Contains("name", "WEBSITE")).Find(&found).Error)
	require.Len(t, found, 1)
	require.Equal(t, "Website Redesign", found[0].Name)

	found = nil
	require.NoError(t, db.Scopes(OwnedBy(owner.ID), Contains("name", "0%")).Find(&found).Error)
	require.Len(t, found, 1)
	require.Equal(t, "100% done", found[0].Name)

	found = nil
	require.NoError(t, db.Scopes(OwnedBy(owner.ID), Contains("name", "e_c")).Find(&found).Error)
	require.Len(t, found, 1)
	require.Equal(t, "snake_case", found[0].Name)
}
