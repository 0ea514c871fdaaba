package importer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Installer persists drafts; satisfied by *store.Store
type Installer interface {
	FindAppByName(ctx context.Context, name string) (*types.App, error)
	InstallApp(ctx context.Context, draft *types.Draft) (string, error)
}

// Seeder installs the apps found in a directory tree
type Seeder struct {
	pipeline  *Pipeline
	installer Installer
}

// NewSeeder creates a seeder
func NewSeeder(p *Pipeline, installer Installer) *Seeder {
	return &Seeder{pipeline: p, installer: installer}
}

// Seed walks dir and installs every .html, .htm and .zip file whose app
// name is not installed yet. Files that fail to import are logged and
// skipped. It returns the number of apps installed.
func (s *Seeder) Seed(ctx context.Context, dir string) (int, error) {
	log := s.pipeline.logger.With(zap.String("dir", dir))

	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".html", ".htm", ".zip":
			mu.Lock()
			paths = append(paths, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)

	installed := 0
	for _, p := range paths {
		ok, err := s.seedFile(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return installed, ctx.Err()
			}
			log.Warn("Skipping seed file", zap.String("file", p), zap.Error(err))
			continue
		}
		if ok {
			installed++
		}
	}

	log.Info("Seeding complete", zap.Int("found", len(paths)), zap.Int("installed", installed))
	return installed, nil
}

func (s *Seeder) seedFile(ctx context.Context, p string) (bool, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	draft, err := s.pipeline.Import(ctx, Request{Source: SourceFile, Filename: filepath.Base(p), Data: data})
	if err != nil {
		return false, err
	}

	existing, err := s.installer.FindAppByName(ctx, draft.App.Name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.installer.InstallApp(ctx, draft); err != nil {
		return false, err
	}
	return true, nil
}
