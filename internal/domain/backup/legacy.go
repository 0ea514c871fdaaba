package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Legacy storage keys
const (
	LegacyAppsKey     = "sakApps"
	LegacyStatsKey    = "sakaiStats"
	LegacyViewModeKey = "sakaiViewMode"
	LegacyThemeKey    = "sakaiTheme"
)

// LegacyRequest carries the raw values of the flat key-value store
type LegacyRequest struct {
	Apps     string `json:"sakApps"`
	Stats    string `json:"sakaiStats"`
	ViewMode string `json:"sakaiViewMode"`
	Theme    string `json:"sakaiTheme"`
}

// MigrateLegacy converts the flat key-value snapshot into table rows and
// settings. It runs at most once per store: a second call returns zero
// without touching the data.
func (s *Service) MigrateLegacy(ctx context.Context, req LegacyRequest) (int, error) {
	done, err := s.store.GetSettingString(ctx, store.SettingLegacyMigrated, "")
	if err != nil {
		return 0, err
	}
	if done != "" {
		s.logger.Debug("legacy data already migrated", zap.String("at", done))
		return 0, nil
	}

	var apps []ProfileApp
	if strings.TrimSpace(req.Apps) != "" {
		if err := sonic.UnmarshalString(req.Apps, &apps); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", types.ErrImportFormat, LegacyAppsKey, err)
		}
	}
	var stats map[string]map[string]int64
	if strings.TrimSpace(req.Stats) != "" {
		if err := sonic.UnmarshalString(req.Stats, &stats); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", types.ErrImportFormat, LegacyStatsKey, err)
		}
	}

	settings := map[string]interface{}{store.SettingLegacyMigrated: s.now().UTC().Format(time.RFC3339)}
	switch mode := strings.TrimSpace(req.ViewMode); mode {
	case "grid", "list":
		settings[store.SettingViewMode] = mode
	case "":
	default:
		s.logger.Warn("ignoring legacy view mode", zap.String("mode", mode))
	}
	if theme := strings.TrimSpace(req.Theme); theme != "" {
		settings[store.SettingTheme] = theme
	}

	records := make([]types.App, 0, len(apps))
	for i := range apps {
		records = append(records, apps[i].toApp())
	}
	n, err := s.store.RestoreApps(ctx, store.Restore{
		Apps:     records,
		Usage:    tallies(stats),
		Settings: settings,
		Source:   "legacy",
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("legacy data migrated", zap.Int("apps", n), zap.Int("days", len(stats)))
	return n, nil
}
