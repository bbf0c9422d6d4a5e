package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
)

type fixture struct {
	contexts     *SQLContextRepository
	users        *SQLUserRepository
	capabilities *SQLCapabilityRepository

	course   *access.Context
	module   *access.Context
	category *access.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logging.NewDiscardLogger()
	f := &fixture{
		contexts:     NewSQLContextRepository(db, logger),
		users:        NewSQLUserRepository(db, logger),
		capabilities: NewSQLCapabilityRepository(db, logger),
	}

	ctx := context.Background()
	system, err := f.contexts.SystemContext(ctx)
	require.NoError(t, err)

	f.category = &access.Context{Level: access.LevelCategory, InstanceID: 3, ParentID: &system.ID}
	require.NoError(t, f.contexts.Store(ctx, f.category))
	f.course = &access.Context{Level: access.LevelCourse, InstanceID: 42, ParentID: &f.category.ID}
	require.NoError(t, f.contexts.Store(ctx, f.course))
	f.module = &access.Context{Level: access.LevelModule, InstanceID: 7, ParentID: &f.course.ID}
	require.NoError(t, f.contexts.Store(ctx, f.module))

	require.NoError(t, f.users.Store(ctx, &access.User{ID: 5, Username: "student"}))
	return f
}

func TestContextRepository_Lookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	system, err := f.contexts.SystemContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), system.ID)
	assert.Nil(t, system.ParentID)

	course, err := f.contexts.CourseContext(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, f.course.ID, course.ID)
	require.NotNil(t, course.ParentID)
	assert.Equal(t, f.category.ID, *course.ParentID)

	missing, err := f.contexts.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	noUserContext, err := f.contexts.UserContext(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, noUserContext)
}

func TestContextRepository_CourseIDForContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID, err := f.contexts.CourseIDForContext(ctx, f.module.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), courseID)

	courseID, err = f.contexts.CourseIDForContext(ctx, f.category.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), courseID, "contexts above course level fall back to the site course")
}

func TestUserRepository_FindByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.FindByID(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "student", u.Username)
	assert.False(t, u.Deleted)

	u, err = f.users.FindByID(ctx, 6)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCapabilityRepository_HasCapability(t *testing.T) {
	ctx := context.Background()

	t.Run("no grant denies", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.module.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("grant is inherited by child contexts", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.category.ID, access.PermissionAllow))

		ok, err := f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.module.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = f.capabilities.HasCapability(ctx, 5, access.CapabilityViewOwn, f.module.ID)
		require.NoError(t, err)
		assert.False(t, ok, "grants are per capability")
	})

	t.Run("nearest grant wins", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.category.ID, access.PermissionAllow))
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.course.ID, access.PermissionPrevent))

		ok, err := f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.module.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.category.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("prohibit overrides closer allow", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.category.ID, access.PermissionProhibit))
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.module.ID, access.PermissionAllow))

		ok, err := f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.module.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("grant can be replaced", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.course.ID, access.PermissionPrevent))
		require.NoError(t, f.capabilities.Grant(ctx, 5, access.CapabilityView, f.course.ID, access.PermissionAllow))

		ok, err := f.capabilities.HasCapability(ctx, 5, access.CapabilityView, f.course.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
