package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

type fakeSource struct {
	apps  []types.App
	err   error
	calls int
}

func (f *fakeSource) GetAllApps(context.Context, store.Filter) ([]types.App, error) {
	f.calls++
	return append([]types.App(nil), f.apps...), f.err
}

type memPrefs struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func (m *memPrefs) GetSettingString(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.values[key].(string); ok {
		return s, nil
	}
	return def, nil
}

func (m *memPrefs) SetSetting(_ context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func newController(src Source, opts ...Option) *Controller {
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(src, Config{Locale: "en"}, nil, opts...)
}

func TestControllerReload(t *testing.T) {
	src := &fakeSource{apps: sampleApps()}
	c := newController(src)
	ctx := context.Background()

	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, []string{"Foo", "Bar"}, names(c.Visible()))

	src.apps = append(src.apps, types.App{ID: "3", Name: "New", LastUsed: now})
	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, []string{"New", "Foo", "Bar"}, names(c.Visible()))
	assert.Equal(t, 2, src.calls)
}

func TestControllerReloadError(t *testing.T) {
	src := &fakeSource{apps: sampleApps()}
	c := newController(src)
	require.NoError(t, c.Reload(context.Background()))

	src.err = errors.New("boom")
	assert.Error(t, c.Reload(context.Background()))
	assert.Len(t, c.Visible(), 2)
}

func TestControllerSettersRefilterWithoutFetching(t *testing.T) {
	src := &fakeSource{apps: sampleApps()}
	c := newController(src)
	ctx := context.Background()
	require.NoError(t, c.Reload(ctx))

	c.SetView("tools")
	assert.Equal(t, []string{"Foo"}, names(c.Visible()))

	c.SetView("")
	c.SetSearch("ba")
	assert.Equal(t, []string{"Bar"}, names(c.Visible()))

	c.SetSearch("")
	c.ToggleFilterTag("dev")
	assert.Equal(t, []string{"Foo"}, names(c.Visible()))
	c.ToggleFilterTag("dev")
	assert.Len(t, c.Visible(), 2)

	require.NoError(t, c.SetSort(ctx, SortName))
	assert.Equal(t, []string{"Bar", "Foo"}, names(c.Visible()))
	assert.ErrorIs(t, c.SetSort(ctx, "size"), types.ErrValidation)
	assert.ErrorIs(t, c.SetViewMode(ctx, "cards"), types.ErrValidation)

	assert.Equal(t, 1, src.calls)
}

func TestControllerPersistsPreferences(t *testing.T) {
	prefs := &memPrefs{values: map[string]interface{}{}}
	ctx := context.Background()

	c := newController(&fakeSource{apps: sampleApps()}, WithPreferences(prefs))
	require.NoError(t, c.Reload(ctx))
	require.NoError(t, c.SetSort(ctx, SortName))
	require.NoError(t, c.SetViewMode(ctx, ModeList))

	restored := newController(&fakeSource{apps: sampleApps()}, WithPreferences(prefs))
	require.NoError(t, restored.Reload(ctx))
	state := restored.State()
	assert.Equal(t, SortName, state.Sort)
	assert.Equal(t, ModeList, state.ViewMode)
}

func TestControllerSetState(t *testing.T) {
	c := newController(&fakeSource{apps: sampleApps()})
	ctx := context.Background()
	require.NoError(t, c.Reload(ctx))

	require.NoError(t, c.SetState(ctx, State{View: "games", FilterTags: []string{" fun ", "fun", ""}}))
	state := c.State()
	assert.Equal(t, SortLastUsed, state.Sort)
	assert.Equal(t, ModeGrid, state.ViewMode)
	assert.Equal(t, []string{"fun"}, state.FilterTags)
	assert.Equal(t, []string{"Bar"}, names(c.Visible()))

	assert.ErrorIs(t, c.SetState(ctx, State{Sort: "random"}), types.ErrValidation)
}

func TestControllerSnapshot(t *testing.T) {
	c := newController(&fakeSource{apps: sampleApps()})
	require.NoError(t, c.Reload(context.Background()))
	c.SetView(ViewFavorites)

	view := c.Snapshot()
	assert.Equal(t, ViewFavorites, view.State.View)
	assert.Equal(t, []string{"Bar"}, names(view.Apps))
	assert.Equal(t, Counts{All: 2, Favorites: 1, Recent: 2}, view.Counts)
	assert.Len(t, view.Categories, 2)
	assert.Contains(t, view.FilterTags, "dev")
}
