package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

type memInstaller struct {
	mu   sync.Mutex
	apps []types.App
}

func (m *memInstaller) FindAppByName(_ context.Context, name string) (*types.App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apps {
		if m.apps[i].Name == name {
			return &m.apps[i], nil
		}
	}
	return nil, nil
}

func (m *memInstaller) InstallApp(_ context.Context, d *types.Draft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = append(m.apps, d.App)
	return d.App.Name, nil
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write("one.html", "<title>One</title>")
	write("nested/two.htm", "<title>Two</title>")
	write("nested/dup.html", "<title>One</title>")
	write("nested/empty.zip", "not really a zip")
	write("notes.txt", "ignored")

	p := testPipeline(t, "")
	inst := &memInstaller{}
	installed, err := NewSeeder(p, inst).Seed(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, installed)

	names := []string{inst.apps[0].Name, inst.apps[1].Name}
	assert.ElementsMatch(t, []string{"One", "Two"}, names)

	again, err := NewSeeder(p, inst).Seed(context.Background(), dir)
	require.NoError(t, err)
	assert.Zero(t, again)
}
