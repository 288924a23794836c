package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/events"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/testutil"
	"gorm.io/gorm"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *ProjectService
	recorder *events.Recorder
	now      time.Time
	alice    *models.User
	bob      *models.User
	ctx      context.Context
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.recorder = &events.Recorder{}
	suite.service = NewProjectService(repository.NewProjectRepository(suite.db), suite.recorder)
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }
	suite.alice = testutil.CreateUser(suite.T(), suite.db, "alice")
	suite.bob = testutil.CreateUser(suite.T(), suite.db, "bob")
	suite.ctx = context.Background()
}

func (suite *ProjectServiceTestSuite) create(ownerID uint64, name string) *models.Project {
	project, err := suite.service.Create(suite.ctx, CreateProjectInput{
		OwnerID:     ownerID,
		Name:        name,
		Description: "d",
	})
	suite.Require().NoError(err)
	return project
}

func (suite *ProjectServiceTestSuite) TestCreateThenGet() {
	created := suite.create(suite.alice.ID, "P1")

	got, err := suite.service.Get(suite.ctx, suite.alice.ID, created.ID)
	suite.Require().NoError(err)
	suite.Equal("P1", got.Name)
	suite.Equal("d", got.Description)
	suite.Equal(suite.alice.ID, got.OwnerID)
	suite.True(suite.now.Equal(got.CreatedAt))
	suite.Equal([]string{events.ProjectCreated}, suite.recorder.Types())
}

func (suite *ProjectServiceTestSuite) TestCreateValidation() {
	_, err := suite.service.Create(suite.ctx, CreateProjectInput{OwnerID: suite.alice.ID, Description: "d"})
	suite.ErrorIs(err, ErrValidation)
	suite.EqualError(err, "name is required")

	_, err = suite.service.Create(suite.ctx, CreateProjectInput{OwnerID: suite.alice.ID, Name: "P1", Description: "   "})
	suite.ErrorIs(err, ErrValidation)
	suite.EqualError(err, "description is required")
}

func (suite *ProjectServiceTestSuite) TestCreateUniquePerOwner() {
	suite.create(suite.alice.ID, "P1")

	_, err := suite.service.Create(suite.ctx, CreateProjectInput{OwnerID: suite.alice.ID, Name: "P1", Description: "d2"})
	suite.ErrorIs(err, ErrProjectExists)

	// Same name under another owner is fine.
	suite.create(suite.bob.ID, "P1")
}

func (suite *ProjectServiceTestSuite) TestOwnershipIsolation() {
	project := suite.create(suite.alice.ID, "P1")
	name := "stolen"

	_, err := suite.service.Get(suite.ctx, suite.bob.ID, project.ID)
	suite.ErrorIs(err, ErrProjectNotFound)

	_, err = suite.service.Update(suite.ctx, suite.bob.ID, project.ID, UpdateProjectInput{Name: &name})
	suite.ErrorIs(err, ErrProjectNotFound)

	suite.ErrorIs(suite.service.Delete(suite.ctx, suite.bob.ID, project.ID), ErrProjectNotFound)

	list, err := suite.service.List(suite.ctx, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Empty(list)

	got, err := suite.service.Get(suite.ctx, suite.alice.ID, project.ID)
	suite.Require().NoError(err)
	suite.Equal("P1", got.Name)
}

func (suite *ProjectServiceTestSuite) TestUpdateChangesOnlySuppliedFields() {
	project := suite.create(suite.alice.ID, "P1")
	suite.now = suite.now.Add(time.Hour)

	description := "new description"
	updated, err := suite.service.Update(suite.ctx, suite.alice.ID, project.ID, UpdateProjectInput{Description: &description})
	suite.Require().NoError(err)
	suite.Equal("P1", updated.Name)
	suite.Equal("new description", updated.Description)
	suite.Equal(suite.alice.ID, updated.OwnerID)
	suite.True(project.CreatedAt.Equal(updated.CreatedAt))
	suite.True(suite.now.Equal(updated.UpdatedAt))
	suite.Equal([]string{events.ProjectCreated, events.ProjectUpdated}, suite.recorder.Types())
}

func (suite *ProjectServiceTestSuite) TestUpdateRejectsEmptyNameAndDuplicates() {
	suite.create(suite.alice.ID, "P1")
	p2 := suite.create(suite.alice.ID, "P2")

	empty := " "
	_, err := suite.service.Update(suite.ctx, suite.alice.ID, p2.ID, UpdateProjectInput{Name: &empty})
	suite.ErrorIs(err, ErrValidation)

	taken := "P1"
	_, err = suite.service.Update(suite.ctx, suite.alice.ID, p2.ID, UpdateProjectInput{Name: &taken})
	suite.ErrorIs(err, ErrProjectExists)
}

func (suite *ProjectServiceTestSuite) TestUpdateWithoutFieldsReturnsProject() {
	project := suite.create(suite.alice.ID, "P1")

	got, err := suite.service.Update(suite.ctx, suite.alice.ID, project.ID, UpdateProjectInput{})
	suite.Require().NoError(err)
	suite.Equal(project.ID, got.ID)

	_, err = suite.service.Update(suite.ctx, suite.alice.ID, project.ID+100, UpdateProjectInput{})
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestDeleteCascadesToTasks() {
	project := suite.create(suite.alice.ID, "P1")
	testutil.CreateTask(suite.T(), suite.db, project, "T1", suite.now.Add(24*time.Hour))
	other := suite.create(suite.alice.ID, "P2")
	testutil.CreateTask(suite.T(), suite.db, other, "T2", suite.now.Add(24*time.Hour))

	suite.Require().NoError(suite.service.Delete(suite.ctx, suite.alice.ID, project.ID))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&count).Error)
	suite.Zero(count)
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("project_id = ?", other.ID).Count(&count).Error)
	suite.Equal(int64(1), count)

	suite.ErrorIs(suite.service.Delete(suite.ctx, suite.alice.ID, project.ID), ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestSearch() {
	suite.create(suite.alice.ID, "Website redesign")
	suite.create(suite.alice.ID, "Mobile app")
	suite.create(suite.alice.ID, "100% done")
	suite.create(suite.bob.ID, "Bob's website")

	found, err := suite.service.Search(suite.ctx, suite.alice.ID, "WEB")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("Website redesign", found[0].Name)

	found, err = suite.service.Search(suite.ctx, suite.alice.ID, "%")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("100% done", found[0].Name)

	_, err = suite.service.Search(suite.ctx, suite.alice.ID, "  ")
	suite.ErrorIs(err, ErrValidation)
	suite.EqualError(err, "Missing search query")
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
