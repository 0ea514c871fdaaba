package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func openTestStore(t *testing.T, path string, clock *testClock) *Store {
	t.Helper()
	s, err := Open(path, nil, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := newTestClock()
	return openTestStore(t, filepath.Join(t.TempDir(), "launcher.db"), clock), clock
}

func htmlDraft(name string) *types.Draft {
	content := "<html><title>" + name + "</title></html>"
	return &types.Draft{
		App: types.App{
			Name:    name,
			Content: &content,
			Type:    types.AppTypeHTML,
		},
		Source: types.AppTypeHTML,
	}
}

func install(t *testing.T, s *Store, d *types.Draft) string {
	t.Helper()
	appID, err := s.InstallApp(context.Background(), d)
	require.NoError(t, err)
	return appID
}
