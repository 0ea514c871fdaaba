package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// Profile archive constants
const (
	ProfileExtension  = ".sakaiprofile"
	ProfileDescriptor = "sakai_profile.json"
	ProfileType       = "sakai_profile"
	ProfileVersion    = "2.0"
	DefaultTheme      = "default"
)

// Profile is the descriptor stored at the root of a profile archive
type Profile struct {
	ExportDate     time.Time                   `json:"exportDate"`
	ProfileVersion string                      `json:"profileVersion,omitempty"`
	SakaiVersion   string                      `json:"sakaiVersion,omitempty"`
	ProfileType    string                      `json:"profileType"`
	Apps           []ProfileApp                `json:"apps"`
	Theme          string                      `json:"theme,omitempty"`
	Stats          map[string]map[string]int64 `json:"stats,omitempty"`
}

// ExportProfile writes a .sakaiprofile archive of every app to w
func (s *Service) ExportProfile(ctx context.Context, w io.Writer) error {
	apps, err := s.store.GetAllApps(ctx, store.Filter{})
	if err != nil {
		return err
	}
	theme, err := s.store.GetSettingString(ctx, store.SettingTheme, DefaultTheme)
	if err != nil {
		return err
	}
	stats, err := s.store.UsageByDay(ctx)
	if err != nil {
		return err
	}

	profile := Profile{
		ExportDate:     s.now().UTC(),
		ProfileVersion: ProfileVersion,
		ProfileType:    ProfileType,
		Apps:           make([]ProfileApp, 0, len(apps)),
		Theme:          theme,
		Stats:          stats,
	}
	for i := range apps {
		profile.Apps = append(profile.Apps, fromApp(&apps[i]))
	}

	zw := zip.NewWriter(w)
	descriptor, err := sonic.ConfigStd.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := writeEntry(zw, ProfileDescriptor, descriptor); err != nil {
		return err
	}

	used := make(map[string]int)
	for i := range apps {
		if !apps[i].HasContent() {
			continue
		}
		name := documentName(apps[i].Name, used)
		if err := writeEntry(zw, name, []byte(*apps[i].Content)); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish profile archive: %w", err)
	}

	s.logger.Info("profile exported", zap.Int("apps", len(apps)))
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to profile: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// documentName returns a unique sanitized file name for an app document
func documentName(appName string, used map[string]int) string {
	base := utils.SanitizeFilename(appName)
	if base == "" {
		base = "app"
	}
	used[base]++
	if n := used[base]; n > 1 {
		return fmt.Sprintf("%s_%d.html", base, n)
	}
	return base + ".html"
}

// ImportProfile restores the apps, theme and stats of a profile archive.
// Apps get fresh ids; apps without content pick up the archived document
// named after them when one exists.
func (s *Service) ImportProfile(ctx context.Context, r io.Reader) (int, error) {
	data, err := readAll(r)
	if err != nil {
		return 0, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: not a profile archive: %v", types.ErrImportFormat, err)
	}

	docs := make(map[string]*zip.File)
	var descriptor *zip.File
	for _, f := range zr.File {
		switch {
		case f.Name == ProfileDescriptor:
			descriptor = f
		case strings.EqualFold(path.Ext(f.Name), ".html") && !strings.Contains(f.Name, "/"):
			docs[f.Name] = f
		}
	}
	if descriptor == nil {
		return 0, fmt.Errorf("%w: %s missing", types.ErrImportFormat, ProfileDescriptor)
	}

	raw, err := readEntry(descriptor)
	if err != nil {
		return 0, err
	}
	var profile Profile
	if err := sonic.Unmarshal(raw, &profile); err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrImportFormat, err)
	}
	if profile.ProfileType != ProfileType {
		return 0, fmt.Errorf("%w: unexpected profile type %q", types.ErrImportFormat, profile.ProfileType)
	}

	apps := make([]types.App, 0, len(profile.Apps))
	used := make(map[string]int)
	for i := range profile.Apps {
		app := profile.Apps[i].toApp()
		if !app.HasContent() && !app.Type.Inline() {
			apps = append(apps, app)
			continue
		}
		name := documentName(app.Name, used)
		if f, ok := docs[name]; ok && !app.HasContent() {
			content, err := readEntry(f)
			if err != nil {
				return 0, err
			}
			text := string(content)
			app.Content = &text
		}
		apps = append(apps, app)
	}

	theme := profile.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	n, err := s.store.RestoreApps(ctx, store.Restore{
		Apps:     apps,
		Usage:    tallies(profile.Stats),
		Settings: map[string]interface{}{store.SettingTheme: theme},
		Source:   "profile",
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("profile imported", zap.Int("apps", n), zap.String("theme", theme))
	return n, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s too large", types.ErrImportFormat, f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrImportFormat, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrImportFormat, f.Name, err)
	}
	return data, nil
}
