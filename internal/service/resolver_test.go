package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/domain"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/imagestore"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/metrics"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/slots"
)

func TestResolveDefaultWhenUnassigned(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, slots.DefaultOf("hub.spa"), env.resolver.Resolve(context.Background(), "hub.spa"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Resolutions().WithLabelValues(metrics.SourceDefault)))
}

func TestResolveUnknownSlot(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "", env.resolver.Resolve(context.Background(), "rooftop.helipad"))
}

func TestResolveCustomAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "spa.png")
	require.NoError(t, env.assignments.Assign(ctx, "hub.spa", a.ID))

	assert.Equal(t, "/media/"+a.ID+"/display", env.resolver.Resolve(ctx, "hub.spa"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Resolutions().WithLabelValues(metrics.SourceCustom)))
}

func TestResolveStaleAssignmentFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "bar.png")
	require.NoError(t, env.assignments.Assign(ctx, "area.bar", a.ID))

	// Remove the record behind the service's back so the assignment dangles.
	removed, err := env.assetStore.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, slots.DefaultOf("area.bar"), env.resolver.Resolve(ctx, "area.bar"))

	// Resolution does not repair the table.
	assetID, ok, err := env.assignments.Get(ctx, "area.bar")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.ID, assetID)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Resolutions().WithLabelValues(metrics.SourceFallback)))
}

func TestResolveMissingDisplayBinaryFallsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "garden.png")
	require.NoError(t, env.assignments.Assign(ctx, "area.garden", a.ID))
	require.NoError(t, env.images.Delete(ctx, imagestore.Key(a.ID, domain.RenditionDisplay)))

	assert.Equal(t, slots.DefaultOf("area.garden"), env.resolver.Resolve(ctx, "area.garden"))
}

func TestResolveNeverAssignedAssetID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.assignments.Assign(ctx, "room.classic", "no-such-asset"))
	assert.Equal(t, slots.DefaultOf("room.classic"), env.resolver.Resolve(ctx, "room.classic"))
}

type brokenAssignments struct{}

func (brokenAssignments) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("database is closed")
}

func (brokenAssignments) GetAll(context.Context) ([]domain.Assignment, error) {
	return nil, errors.New("database is closed")
}

func TestResolveAssignmentReadErrorFallsBack(t *testing.T) {
	env := newTestEnv(t)
	r := NewResolver(brokenAssignments{}, env.assets, nil, slog.Default())

	assert.Equal(t, slots.DefaultOf("home.hero"), r.Resolve(context.Background(), "home.hero"))

	_, err := r.Describe(context.Background())
	assert.Error(t, err)
}

func TestResolveMany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "pool.png")
	require.NoError(t, env.assignments.Assign(ctx, "hub.pool", a.ID))

	got := env.resolver.ResolveMany(ctx, []string{"hub.pool", "hub.fitness", "bogus"})
	assert.Equal(t, map[string]string{
		"hub.pool":    "/media/" + a.ID + "/display",
		"hub.fitness": slots.DefaultOf("hub.fitness"),
		"bogus":       "",
	}, got)
}

func TestResolveAll(t *testing.T) {
	env := newTestEnv(t)

	got := env.resolver.ResolveAll(context.Background())
	require.Len(t, got, len(slots.All()))
	for _, s := range slots.All() {
		assert.Equal(t, s.Default, got[s.ID], s.ID)
	}
}

func TestDescribe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := uploadPNG(t, env, "wedding.png")
	require.NoError(t, env.assignments.Assign(ctx, "events.wedding", a.ID))
	require.NoError(t, env.assignments.Assign(ctx, "events.meeting", "gone"))

	states, err := env.resolver.Describe(ctx)
	require.NoError(t, err)

	all := slots.All()
	require.Len(t, states, len(all))
	for i, s := range all {
		assert.Equal(t, s.ID, states[i].ID)
	}

	byID := make(map[string]SlotState, len(states))
	for _, st := range states {
		byID[st.ID] = st
	}

	wedding := byID["events.wedding"]
	assert.True(t, wedding.Custom)
	assert.Equal(t, a.ID, wedding.AssetID)
	assert.Equal(t, "/media/"+a.ID+"/display", wedding.URL)

	meeting := byID["events.meeting"]
	assert.False(t, meeting.Custom)
	assert.Equal(t, "gone", meeting.AssetID)
	assert.Equal(t, meeting.Default, meeting.URL)

	lobby := byID["area.lobby"]
	assert.False(t, lobby.Custom)
	assert.Empty(t, lobby.AssetID)
}
