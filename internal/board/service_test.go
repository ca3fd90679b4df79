package board_test

import (
	"testing"
	"time"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/board"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type boardFixture struct {
	svc     *board.Service
	db      *gorm.DB
	owner   *models.User
	member  *models.User
	project *models.Project
}

func newBoardFixture(t *testing.T) *boardFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	ws := testutil.CreateTestWorkspace(t, db, owner)
	testutil.AddTestMember(t, db, ws, member, models.MemberRoleMember)
	project := testutil.CreateTestProject(t, db, ws)

	return &boardFixture{
		svc:     board.NewService(db, access.NewResolver(db)),
		db:      db,
		owner:   owner,
		member:  member,
		project: project,
	}
}

func TestCreateTaskPositions(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	t.Run("positions count up per lane", func(t *testing.T) {
		first, err := f.svc.CreateTask(ctx, f.owner.ID, board.CreateTaskInput{
			ProjectID: f.project.ID, Title: "first",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, first.Position)
		assert.Equal(t, models.TaskStatusTodo, first.Status)
		assert.Equal(t, models.TaskPriorityMedium, first.Priority)

		second, err := f.svc.CreateTask(ctx, f.owner.ID, board.CreateTaskInput{
			ProjectID: f.project.ID, Title: "second",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, second.Position)
	})

	t.Run("each status lane counts independently", func(t *testing.T) {
		task, err := f.svc.CreateTask(ctx, f.owner.ID, board.CreateTaskInput{
			ProjectID: f.project.ID, Title: "doing", Status: models.TaskStatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, task.Position)
	})

	t.Run("deletion gaps are not reused", func(t *testing.T) {
		list, err := f.svc.ListTasks(ctx, f.owner.ID, f.project.ID)
		require.NoError(t, err)
		var top *models.Task
		for i := range list {
			if list[i].Status == models.TaskStatusTodo {
				top = &list[i]
			}
		}
		require.NotNil(t, top)
		require.Equal(t, 2, top.Position)
		require.NoError(t, f.svc.DeleteTask(ctx, f.owner.ID, top.ID))

		next, err := f.svc.CreateTask(ctx, f.owner.ID, board.CreateTaskInput{
			ProjectID: f.project.ID, Title: "third",
		})
		require.NoError(t, err)
		// Max remaining position in the lane is 1, so the gap at 2 is filled
		// by the max+1 rule, not by remembering the deleted slot.
		assert.Equal(t, 2, next.Position)
	})

	t.Run("outsider gets forbidden", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, f.db)
		_, err := f.svc.CreateTask(ctx, outsider.ID, board.CreateTaskInput{
			ProjectID: f.project.ID, Title: "nope",
		})
		assert.ErrorIs(t, err, board.ErrForbidden)
	})
}

func TestListTasksOrdering(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	a := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 2)
	b := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)
	// Same position as a: id breaks the tie.
	c := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 2)

	list, err := f.svc.ListTasks(ctx, f.member.ID, f.project.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, c.ID, list[2].ID)
}

func TestListTasksAcrossProjects(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)

	// A second workspace the member does not belong to.
	other := testutil.CreateTestUser(t, f.db)
	otherWS := testutil.CreateTestWorkspace(t, f.db, other)
	otherProj := testutil.CreateTestProject(t, f.db, otherWS)
	testutil.CreateTestTask(t, f.db, otherProj, other, models.TaskStatusTodo, 1)

	list, err := f.svc.ListTasks(ctx, f.member.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.project.ID, list[0].ProjectID)
}

func TestGetTaskNotFoundBeforeForbidden(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	task := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)
	outsider := testutil.CreateTestUser(t, f.db)

	_, err := f.svc.GetTask(ctx, outsider.ID, 99999)
	assert.ErrorIs(t, err, board.ErrTaskNotFound)

	_, err = f.svc.GetTask(ctx, outsider.ID, task.ID)
	assert.ErrorIs(t, err, board.ErrForbidden)
}

func TestUpdateTaskPartial(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	due := time.Now().Add(48 * time.Hour)
	task, err := f.svc.CreateTask(ctx, f.owner.ID, board.CreateTaskInput{
		ProjectID:   f.project.ID,
		Title:       "original",
		Description: "keep",
		Priority:    models.TaskPriorityHigh,
		DueDate:     &due,
	})
	require.NoError(t, err)

	title := "renamed"
	got, err := f.svc.UpdateTask(ctx, f.member.ID, task.ID, board.UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	var stored models.Task
	require.NoError(t, f.db.First(&stored, task.ID).Error)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, "keep", stored.Description)
	assert.Equal(t, models.TaskPriorityHigh, stored.Priority)
	require.NotNil(t, stored.DueDate)
}

func TestReposition(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	a := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)
	b := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 2)

	t.Run("placement is written verbatim", func(t *testing.T) {
		got, err := f.svc.Reposition(ctx, f.member.ID, a.ID, models.TaskStatusInProgress, 7)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusInProgress, got.Status)
		assert.Equal(t, 7, got.Position)
	})

	t.Run("duplicate positions are accepted and siblings untouched", func(t *testing.T) {
		_, err := f.svc.Reposition(ctx, f.member.ID, b.ID, models.TaskStatusInProgress, 7)
		require.NoError(t, err)

		var stored []models.Task
		require.NoError(t, f.db.Where("status = ?", models.TaskStatusInProgress).
			Order("position, id").Find(&stored).Error)
		require.Len(t, stored, 2)
		assert.Equal(t, stored[0].Position, stored[1].Position)
		assert.Equal(t, a.ID, stored[0].ID)
		assert.Equal(t, b.ID, stored[1].ID)
	})
}

func TestDeleteTaskRemovesComments(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	task := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)
	_, err := f.svc.CreateComment(ctx, f.member.ID, task.ID, "going away")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTask(ctx, f.owner.ID, task.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestComments(t *testing.T) {
	f := newBoardFixture(t)
	ctx := testutil.TestContext(t)

	task := testutil.CreateTestTask(t, f.db, f.project, f.owner, models.TaskStatusTodo, 1)
	outsider := testutil.CreateTestUser(t, f.db)

	comment, err := f.svc.CreateComment(ctx, f.member.ID, task.ID, "first!")
	require.NoError(t, err)

	t.Run("any member may read", func(t *testing.T) {
		list, err := f.svc.ListComments(ctx, f.owner.ID, task.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "first!", list[0].Content)
	})

	t.Run("outsider may not read", func(t *testing.T) {
		_, err := f.svc.ListComments(ctx, outsider.ID, task.ID)
		assert.ErrorIs(t, err, board.ErrForbidden)
	})

	t.Run("edit is author-only", func(t *testing.T) {
		_, err := f.svc.UpdateComment(ctx, f.owner.ID, comment.ID, "hijacked")
		assert.ErrorIs(t, err, board.ErrForbidden)

		got, err := f.svc.UpdateComment(ctx, f.member.ID, comment.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
	})

	t.Run("delete is author-only", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.DeleteComment(ctx, f.owner.ID, comment.ID), board.ErrForbidden)
		require.NoError(t, f.svc.DeleteComment(ctx, f.member.ID, comment.ID))
	})

	t.Run("missing comment", func(t *testing.T) {
		_, err := f.svc.UpdateComment(ctx, f.member.ID, 99999, "x")
		assert.ErrorIs(t, err, board.ErrCommentNotFound)
		assert.ErrorIs(t, f.svc.DeleteComment(ctx, f.member.ID, 99999), board.ErrCommentNotFound)
	})
}
