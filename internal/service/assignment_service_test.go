package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
)

func TestAssignmentServiceRejectsUnknownSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.assignments.Assign(ctx, "rooftop.helipad", "a1")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	err = env.assignments.Clear(ctx, "rooftop.helipad")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	all, err := env.assignments.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssignmentServiceRejectsEmptyAssetID(t *testing.T) {
	env := newTestEnv(t)

	err := env.assignments.Assign(context.Background(), "home.hero", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestAssignmentServiceReassignAndClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.assignments.Assign(ctx, "home.welcome", "a1"))
	require.NoError(t, env.assignments.Assign(ctx, "home.welcome", "a2"))

	id, ok, err := env.assignments.Get(ctx, "home.welcome")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a2", id)

	require.NoError(t, env.assignments.Clear(ctx, "home.welcome"))
	require.NoError(t, env.assignments.Clear(ctx, "home.welcome"))

	_, ok, err = env.assignments.Get(ctx, "home.welcome")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAssignmentServiceSlotsForAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.assignments.Assign(ctx, "room.suite", "a1"))
	require.NoError(t, env.assignments.Assign(ctx, "home.hero", "a1"))
	require.NoError(t, env.assignments.Assign(ctx, "hub.spa", "a2"))

	got, err := env.assignments.SlotsForAsset(ctx, "a1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"room.suite", "home.hero"}, got)
}

func TestResetClearsLibraryAndAssignments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "a.png")
	require.NoError(t, env.assignments.Assign(ctx, "concierge.city", a.ID))
	require.NoError(t, env.assignments.Assign(ctx, "concierge.transfers", "dangling"))

	require.NoError(t, Reset(ctx, env.assets, env.assignments))

	list, err := env.assets.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := env.assignments.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, env.images.Len())
}

func TestBuildExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	exp, err := BuildExport(ctx, env.assets, env.assignments)
	require.NoError(t, err)
	assert.NotNil(t, exp.Assignments)
	assert.NotNil(t, exp.Media)
	assert.Empty(t, exp.Media)

	a := uploadPNG(t, env, "terrace.png")
	require.NoError(t, env.assignments.Assign(ctx, "area.terrace", a.ID))

	exp, err = BuildExport(ctx, env.assets, env.assignments)
	require.NoError(t, err)

	require.Len(t, exp.Assignments, 1)
	assert.Equal(t, ExportedAssignment{SlotID: "area.terrace", MediaID: a.ID}, exp.Assignments[0])

	require.Len(t, exp.Media, 1)
	m := exp.Media[0]
	assert.Equal(t, a.ID, m.ID)
	assert.Equal(t, "terrace", m.Name)
	assert.Equal(t, "terrace.png", m.Filename)
	assert.Equal(t, a.UploadedAt.UnixMilli(), m.UploadedAt)
	assert.Equal(t, 40, m.Width)
	assert.Equal(t, 30, m.Height)
}
