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

type TaskServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	service      *TaskService
	recorder     *events.Recorder
	now          time.Time
	alice        *models.User
	bob          *models.User
	aliceProject *models.Project
	bobProject   *models.Project
	ctx          context.Context
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.recorder = &events.Recorder{}
	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		suite.recorder,
	)
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }
	suite.alice = testutil.CreateUser(suite.T(), suite.db, "alice")
	suite.bob = testutil.CreateUser(suite.T(), suite.db, "bob")
	suite.aliceProject = testutil.CreateProject(suite.T(), suite.db, suite.alice.ID, "P1")
	suite.bobProject = testutil.CreateProject(suite.T(), suite.db, suite.bob.ID, "P1")
	suite.ctx = context.Background()
}

func intPtr(v int) *int          { return &v }
func uint64Ptr(v uint64) *uint64 { return &v }
func strPtr(v string) *string    { return &v }
func boolPtr(v bool) *bool       { return &v }

func (suite *TaskServiceTestSuite) validInput() CreateTaskInput {
	return CreateTaskInput{
		OwnerID:   suite.alice.ID,
		Title:     "T1",
		DueDate:   "2024-05-02T12:00:00Z",
		Priority:  intPtr(2),
		ProjectID: uint64Ptr(suite.aliceProject.ID),
	}
}

func (suite *TaskServiceTestSuite) TestCreate() {
	input := suite.validInput()
	input.Description = strPtr("write the thing")

	task, err := suite.service.Create(suite.ctx, input)
	suite.Require().NoError(err)
	suite.Equal(suite.alice.ID, task.OwnerID)
	suite.Equal(suite.aliceProject.ID, task.ProjectID)
	suite.False(task.Completed)

	got, err := suite.service.Get(suite.ctx, suite.alice.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal("T1", got.Title)
	suite.Require().NotNil(got.Description)
	suite.Equal("write the thing", *got.Description)
	suite.Equal(2, got.Priority)
	suite.True(time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC).Equal(got.DueDate))
	suite.Equal([]string{events.TaskCreated}, suite.recorder.Types())
}

func (suite *TaskServiceTestSuite) TestCreateWithoutDescriptionStoresNull() {
	task, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	got, err := suite.service.Get(suite.ctx, suite.alice.ID, task.ID)
	suite.Require().NoError(err)
	suite.Nil(got.Description)
}

func (suite *TaskServiceTestSuite) TestCreateValidationOrder() {
	tests := []struct {
		name    string
		mutate  func(in *CreateTaskInput)
		message string
	}{
		{"missing title", func(in *CreateTaskInput) { in.Title = "" }, "title is required"},
		{"missing due date", func(in *CreateTaskInput) { in.DueDate = "" }, "due_date is required"},
		{"missing priority", func(in *CreateTaskInput) { in.Priority = nil }, "priority is required"},
		{"missing project", func(in *CreateTaskInput) { in.ProjectID = nil }, "project_id is required"},
		{"priority above range", func(in *CreateTaskInput) { in.Priority = intPtr(4) }, "priority must be between 1 and 3"},
		{"priority below range", func(in *CreateTaskInput) { in.Priority = intPtr(0) }, "priority must be between 1 and 3"},
		{"unparseable due date", func(in *CreateTaskInput) { in.DueDate = "tomorrow" }, "due_date must be a valid date"},
		{"due date yesterday", func(in *CreateTaskInput) { in.DueDate = "2024-04-30" }, "due_date must be in the future"},
		{"due date now", func(in *CreateTaskInput) { in.DueDate = "2024-05-01T12:00:00Z" }, "due_date must be in the future"},
		{
			"priority checked before due date",
			func(in *CreateTaskInput) {
				in.Priority = intPtr(4)
				in.DueDate = "2024-04-30"
			},
			"priority must be between 1 and 3",
		},
		{
			"due date checked before project",
			func(in *CreateTaskInput) {
				in.DueDate = "2024-04-30"
				in.ProjectID = uint64Ptr(9999)
			},
			"due_date must be in the future",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			input := suite.validInput()
			tt.mutate(&input)

			_, err := suite.service.Create(suite.ctx, input)
			suite.ErrorIs(err, ErrValidation)
			suite.EqualError(err, tt.message)
		})
	}
}

func (suite *TaskServiceTestSuite) TestCreateAcceptsDateLayouts() {
	for i, due := range []string{"2024-05-03", "2024-05-03T09:30:00", "2024-05-03T09:30:00+09:00", "2024-05-03T09:30:00.123Z"} {
		input := suite.validInput()
		input.Title = "T" + due
		input.DueDate = due
		_, err := suite.service.Create(suite.ctx, input)
		suite.NoError(err, "layout %d", i)
	}
}

func (suite *TaskServiceTestSuite) TestCreateAgainstMissingOrForeignProject() {
	input := suite.validInput()
	input.ProjectID = uint64Ptr(9999)
	_, err := suite.service.Create(suite.ctx, input)
	suite.ErrorIs(err, ErrProjectNotFound)

	input = suite.validInput()
	input.ProjectID = uint64Ptr(suite.bobProject.ID)
	_, err = suite.service.Create(suite.ctx, input)
	suite.ErrorIs(err, ErrProjectNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskServiceTestSuite) TestCreateDuplicateTitle() {
	_, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	_, err = suite.service.Create(suite.ctx, suite.validInput())
	suite.ErrorIs(err, ErrTaskExists)

	// Same title in another project is fine.
	other := testutil.CreateProject(suite.T(), suite.db, suite.alice.ID, "P2")
	input := suite.validInput()
	input.ProjectID = uint64Ptr(other.ID)
	_, err = suite.service.Create(suite.ctx, input)
	suite.NoError(err)
}

func (suite *TaskServiceTestSuite) TestOwnershipIsolation() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T1", suite.now.Add(time.Hour))

	_, err := suite.service.Get(suite.ctx, suite.bob.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.service.Update(suite.ctx, suite.bob.ID, task.ID, UpdateTaskInput{Completed: boolPtr(true)})
	suite.ErrorIs(err, ErrTaskNotFound)

	suite.ErrorIs(suite.service.Delete(suite.ctx, suite.bob.ID, task.ID), ErrTaskNotFound)

	list, err := suite.service.List(suite.ctx, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Empty(list)

	list, err = suite.service.ListByProject(suite.ctx, suite.bob.ID, suite.aliceProject.ID)
	suite.Require().NoError(err)
	suite.Empty(list)

	_, err = suite.service.ListByOwnedProject(suite.ctx, suite.bob.ID, suite.aliceProject.ID)
	suite.ErrorIs(err, ErrProjectNotFound)

	got, err := suite.service.Get(suite.ctx, suite.alice.ID, task.ID)
	suite.Require().NoError(err)
	suite.False(got.Completed)
}

func (suite *TaskServiceTestSuite) TestListByProject() {
	testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T1", suite.now.Add(time.Hour))
	testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T2", suite.now.Add(time.Hour))
	other := testutil.CreateProject(suite.T(), suite.db, suite.alice.ID, "P2")
	testutil.CreateTask(suite.T(), suite.db, other, "T3", suite.now.Add(time.Hour))

	tasks, err := suite.service.ListByOwnedProject(suite.ctx, suite.alice.ID, suite.aliceProject.ID)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 2)
	suite.Equal("T1", tasks[0].Title)
	suite.Equal("T2", tasks[1].Title)

	all, err := suite.service.List(suite.ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(all, 3)

	// Unchecked listing of an unknown project is empty, not an error.
	tasks, err = suite.service.ListByProject(suite.ctx, suite.alice.ID, 9999)
	suite.Require().NoError(err)
	suite.Empty(tasks)
}

func (suite *TaskServiceTestSuite) TestUpdate() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T1", suite.now.Add(time.Hour))
	suite.now = suite.now.Add(time.Minute)

	updated, err := suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{
		Completed:   boolPtr(true),
		Priority:    intPtr(3),
		Description: strPtr("notes"),
	})
	suite.Require().NoError(err)
	suite.True(updated.Completed)
	suite.Equal(3, updated.Priority)
	suite.Equal("T1", updated.Title)
	suite.Equal(suite.aliceProject.ID, updated.ProjectID)
	suite.Equal(suite.alice.ID, updated.OwnerID)
	suite.Require().NotNil(updated.Description)
	suite.Equal("notes", *updated.Description)
	suite.True(suite.now.Equal(updated.UpdatedAt))

	cleared, err := suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{Description: strPtr("")})
	suite.Require().NoError(err)
	suite.Nil(cleared.Description)

	// A past due date is accepted on update.
	moved, err := suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{DueDate: strPtr("2020-01-01")})
	suite.Require().NoError(err)
	suite.True(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Equal(moved.DueDate))
}

func (suite *TaskServiceTestSuite) TestUpdateValidation() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T1", suite.now.Add(time.Hour))
	testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T2", suite.now.Add(time.Hour))

	_, err := suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{Title: strPtr("")})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{Priority: intPtr(4)})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{DueDate: strPtr("soon")})
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.service.Update(suite.ctx, suite.alice.ID, task.ID, UpdateTaskInput{Title: strPtr("T2")})
	suite.ErrorIs(err, ErrTaskExists)
}

func (suite *TaskServiceTestSuite) TestDelete() {
	task := testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "T1", suite.now.Add(time.Hour))

	suite.Require().NoError(suite.service.Delete(suite.ctx, suite.alice.ID, task.ID))
	_, err := suite.service.Get(suite.ctx, suite.alice.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	suite.ErrorIs(suite.service.Delete(suite.ctx, suite.alice.ID, task.ID), ErrTaskNotFound)
	suite.Equal([]string{events.TaskDeleted}, suite.recorder.Types())
}

func (suite *TaskServiceTestSuite) TestSearch() {
	testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "Write report", suite.now.Add(time.Hour))
	testutil.CreateTask(suite.T(), suite.db, suite.aliceProject, "Review PR", suite.now.Add(time.Hour))
	testutil.CreateTask(suite.T(), suite.db, suite.bobProject, "Write tests", suite.now.Add(time.Hour))

	found, err := suite.service.Search(suite.ctx, suite.alice.ID, "write")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("Write report", found[0].Title)

	_, err = suite.service.Search(suite.ctx, suite.alice.ID, "")
	suite.ErrorIs(err, ErrValidation)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
