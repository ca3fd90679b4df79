package access_test

import (
	"testing"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccessWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	resolver := access.NewResolver(db)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	outsider := testutil.CreateTestUser(t, db)

	ws := testutil.CreateTestWorkspace(t, db, owner)
	testutil.AddTestMember(t, db, ws, member, models.MemberRoleViewer)

	t.Run("owner can access", func(t *testing.T) {
		ok, err := resolver.CanAccessWorkspace(ctx, owner.ID, ws.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("member can access regardless of role", func(t *testing.T) {
		ok, err := resolver.CanAccessWorkspace(ctx, member.ID, ws.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("outsider cannot access", func(t *testing.T) {
		ok, err := resolver.CanAccessWorkspace(ctx, outsider.ID, ws.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing workspace is not an error", func(t *testing.T) {
		ok, err := resolver.CanAccessWorkspace(ctx, owner.ID, 99999)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCanAccessTaskWalksChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	resolver := access.NewResolver(db)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db)
	member := testutil.CreateTestUser(t, db)
	outsider := testutil.CreateTestUser(t, db)

	ws := testutil.CreateTestWorkspace(t, db, owner)
	testutil.AddTestMember(t, db, ws, member, models.MemberRoleMember)
	proj := testutil.CreateTestProject(t, db, ws)
	task := testutil.CreateTestTask(t, db, proj, owner, models.TaskStatusTodo, 1)

	t.Run("member reaches task through project and workspace", func(t *testing.T) {
		ok, err := resolver.CanAccessTask(ctx, member.ID, task.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("outsider denied at the workspace", func(t *testing.T) {
		ok, err := resolver.CanAccessTask(ctx, outsider.ID, task.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing task yields false", func(t *testing.T) {
		ok, err := resolver.CanAccessTask(ctx, member.ID, 99999)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("orphaned project breaks the chain", func(t *testing.T) {
		orphan := &models.Project{WorkspaceID: 99999, Name: "Orphan"}
		require.NoError(t, db.Create(orphan).Error)
		stray := testutil.CreateTestTask(t, db, orphan, owner, models.TaskStatusTodo, 1)

		ok, err := resolver.CanAccessTask(ctx, owner.ID, stray.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestIsWorkspaceAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	resolver := access.NewResolver(db)
	ctx := testutil.TestContext(t)

	owner := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestUser(t, db)
	viewer := testutil.CreateTestUser(t, db)

	ws := testutil.CreateTestWorkspace(t, db, owner)
	testutil.AddTestMember(t, db, ws, admin, models.MemberRoleAdmin)
	testutil.AddTestMember(t, db, ws, viewer, models.MemberRoleViewer)

	tests := []struct {
		name   string
		userID uint
		want   bool
	}{
		{"owner is admin", owner.ID, true},
		{"admin member is admin", admin.ID, true},
		{"viewer member is not admin", viewer.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := resolver.IsWorkspaceAdmin(ctx, tt.userID, ws.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAccessibleWorkspaceIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	resolver := access.NewResolver(db)
	ctx := testutil.TestContext(t)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	// Owned workspace: user also holds a membership row, so it appears in
	// both sources and must be returned once.
	owned := testutil.CreateTestWorkspace(t, db, user)
	joined := testutil.CreateTestWorkspace(t, db, other)
	testutil.AddTestMember(t, db, joined, user, models.MemberRoleMember)
	testutil.CreateTestWorkspace(t, db, other) // unrelated

	ids, err := resolver.AccessibleWorkspaceIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{owned.ID, joined.ID}, ids)
}
