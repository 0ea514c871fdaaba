package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/id"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

func TestInstallAppDefaults(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	appID := install(t, s, htmlDraft("Calculator"))
	assert.True(t, id.IsAppID(appID))

	app, err := s.GetApp(ctx, appID)
	require.NoError(t, err)

	assert.Equal(t, "Calculator", app.Name)
	assert.Equal(t, types.AppTypeHTML, app.Type)
	require.NotNil(t, app.Content)
	assert.Contains(t, *app.Content, "Calculator")
	assert.Equal(t, types.DefaultCategory, app.Category)
	assert.Equal(t, DefaultVersion, app.Version)
	assert.Equal(t, []string{}, app.Tags)
	assert.False(t, app.Favorite)
	assert.Zero(t, app.UsageCount)
	assert.True(t, app.InstallDate.Equal(clock.Now()))
	assert.True(t, app.LastUsed.Equal(app.InstallDate))
}

func TestInstallAppIgnoresDraftBookkeeping(t *testing.T) {
	s, _ := newTestStore(t)
	d := htmlDraft("Cheater")
	d.App.ID = "app_chosen"
	d.App.UsageCount = 99
	d.App.Favorite = true

	appID := install(t, s, d)
	assert.NotEqual(t, "app_chosen", appID)

	app, err := s.GetApp(context.Background(), appID)
	require.NoError(t, err)
	assert.Zero(t, app.UsageCount)
	assert.False(t, app.Favorite)
}

func TestInstallAppWithFiles(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	d := htmlDraft("Bundle")
	d.App.Type = types.AppTypeZip
	d.Files = []types.AppFile{
		{Filename: "index.html", Content: "<html></html>", Encoding: types.EncodingText, Size: 13, MimeType: "text/html"},
		{Filename: "app.js", Content: "run()", Encoding: types.EncodingText, Size: 5, MimeType: "text/javascript"},
	}
	appID := install(t, s, d)

	files, err := s.GetAppFiles(ctx, appID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "index.html", files[0].Filename)
	assert.Equal(t, appID, files[1].AppID)

	events, err := s.GetUnsyncedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.ActionAppInstalled, events[0].Action)
	assert.Equal(t, appID, events[0].Data["appId"])
	assert.NotEmpty(t, events[0].DeviceID)
}

func TestInstallAppRejectsNilDraft(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.InstallApp(context.Background(), nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestGetAppMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetApp(context.Background(), "app_missing")
	assert.ErrorIs(t, err, types.ErrAppNotFound)
}

func TestGetAllAppsOrderAndFilters(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	games := htmlDraft("Snake")
	games.App.Category = "games"
	games.App.Tags = []string{"arcade", "retro"}
	snakeID := install(t, s, games)

	clock.Advance(time.Minute)
	notes := htmlDraft("Notes")
	notes.App.Description = "Write 100% of your ideas"
	notesID := install(t, s, notes)

	clock.Advance(time.Minute)
	paint := htmlDraft("Paint")
	paint.App.Category = "games"
	paintID := install(t, s, paint)

	all, err := s.GetAllApps(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{paintID, notesID, snakeID}, ids(all))

	_, err = s.RecordLaunch(ctx, snakeID, clock.Now().Add(time.Hour))
	require.NoError(t, err)
	all, err = s.GetAllApps(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, snakeID, all[0].ID)

	byCategory, err := s.GetAllApps(ctx, Filter{Category: "games"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{snakeID, paintID}, ids(byCategory))

	allCategory, err := s.GetAllApps(ctx, Filter{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, allCategory, 3)

	byTag, err := s.GetAllApps(ctx, Filter{Search: "RETRO"})
	require.NoError(t, err)
	assert.Equal(t, []string{snakeID}, ids(byTag))

	for _, term := range []string{`"`, ",", "[", `","`} {
		matched, err := s.GetAllApps(ctx, Filter{Search: term})
		require.NoError(t, err)
		assert.Empty(t, matched, term)
	}

	literalPercent, err := s.GetAllApps(ctx, Filter{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{notesID}, ids(literalPercent))

	_, err = s.ToggleFavorite(ctx, notesID)
	require.NoError(t, err)
	favorites, err := s.GetAllApps(ctx, Filter{FavoriteOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{notesID}, ids(favorites))
}

func ids(apps []types.App) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.ID
	}
	return out
}

func TestUpdateApp(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	appID := install(t, s, htmlDraft("Draw"))

	name := "Sketch"
	tags := []string{"art"}
	ok, err := s.UpdateApp(ctx, appID, types.AppUpdate{Name: &name, Tags: &tags, Metadata: types.Bag{"launchMode": "window"}})
	require.NoError(t, err)
	assert.True(t, ok)

	app, err := s.GetApp(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, "Sketch", app.Name)
	assert.Equal(t, []string{"art"}, app.Tags)
	assert.Equal(t, "window", app.Metadata.String(types.MetaLaunchMode))
	assert.Equal(t, types.DefaultCategory, app.Category)

	ok, err = s.UpdateApp(ctx, "app_missing", types.AppUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)

	empty := ""
	_, err = s.UpdateApp(ctx, appID, types.AppUpdate{Name: &empty})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestDeleteAppCascades(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	d := htmlDraft("Archive")
	d.Files = []types.AppFile{{Filename: "index.html", Content: "x"}}
	appID := install(t, s, d)
	keepID := install(t, s, htmlDraft("Keep"))

	_, err := s.RecordLaunch(ctx, appID, clock.Now())
	require.NoError(t, err)
	_, err = s.RecordLaunch(ctx, keepID, clock.Now())
	require.NoError(t, err)

	ok, err := s.DeleteApp(ctx, appID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.GetApp(ctx, appID)
	assert.ErrorIs(t, err, types.ErrAppNotFound)

	files, err := s.GetAppFiles(ctx, appID)
	require.NoError(t, err)
	assert.Empty(t, files)

	usage, err := s.UsageSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, keepID, usage[0].AppID)

	events, err := s.GetSyncEvents(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.ActionAppDeleted, events[0].Action)

	ok, err = s.DeleteApp(ctx, appID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordLaunch(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	appID := install(t, s, htmlDraft("Timer"))

	var last time.Time
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		last = clock.Now()
		app, err := s.RecordLaunch(ctx, appID, last)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), app.UsageCount)
	}

	app, err := s.GetApp(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), app.UsageCount)
	assert.True(t, app.LastUsed.Equal(last))

	usage, err := s.UsageByDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage[last.Local().Format(types.DayLayout)][appID])

	_, err = s.RecordLaunch(ctx, "app_missing", last)
	assert.ErrorIs(t, err, types.ErrAppNotFound)
}

func TestRecordLaunchConcurrent(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	appID := install(t, s, htmlDraft("Busy"))

	const launches = 20
	var wg sync.WaitGroup
	for i := 0; i < launches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordLaunch(ctx, appID, clock.Now())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	app, err := s.GetApp(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(launches), app.UsageCount)
}

func TestUpdateLastUsedKeepsUsageCount(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	appID := install(t, s, htmlDraft("Clock"))

	clock.Advance(time.Hour)
	require.NoError(t, s.UpdateLastUsed(ctx, appID))

	app, err := s.GetApp(ctx, appID)
	require.NoError(t, err)
	assert.True(t, app.LastUsed.Equal(clock.Now()))
	assert.Zero(t, app.UsageCount)

	assert.ErrorIs(t, s.UpdateLastUsed(ctx, "app_missing"), types.ErrAppNotFound)
}

func TestToggleFavorite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	appID := install(t, s, htmlDraft("Star"))

	fav, err := s.ToggleFavorite(ctx, appID)
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = s.ToggleFavorite(ctx, appID)
	require.NoError(t, err)
	assert.False(t, fav)

	_, err = s.ToggleFavorite(ctx, "app_missing")
	assert.ErrorIs(t, err, types.ErrAppNotFound)
}

func TestRestoreAppsRemapsIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	content := "<p>old</p>"

	n, err := s.RestoreApps(ctx, Restore{
		Apps: []types.App{
			{ID: "legacy-1", Name: "Old Game", Content: &content, Type: types.AppTypeHTML, UsageCount: 7, Tags: []string{"a"}},
			{ID: "legacy-2", Name: ""},
		},
		Files:    []types.AppFile{{AppID: "legacy-1", Filename: "index.html", Content: content}},
		Usage:    []types.UsageTally{{Date: "2023-01-02", AppID: "legacy-1", Count: 4}},
		Settings: map[string]interface{}{"theme": "dark", "deviceId": "device_foreign"},
		Source:   "test",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	apps, err := s.GetAllApps(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	restored := apps[0]
	assert.True(t, id.IsAppID(restored.ID))
	assert.Equal(t, int64(7), restored.UsageCount)

	files, err := s.GetAppFiles(ctx, restored.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	usage, err := s.UsageByDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), usage["2023-01-02"][restored.ID])

	theme, err := s.GetSettingString(ctx, SettingTheme, "")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	device, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "device_foreign", device)
}

func TestSubscribeReceivesCommittedEvents(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var got []string
	s.Subscribe(func(ev types.SyncEvent) { got = append(got, ev.Action) })

	appID := install(t, s, htmlDraft("Observed"))
	_, err := s.DeleteApp(ctx, appID)
	require.NoError(t, err)

	assert.Equal(t, []string{types.ActionAppInstalled, types.ActionAppDeleted}, got)
}
