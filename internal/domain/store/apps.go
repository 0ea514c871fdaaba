package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/id"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/utils"
)

// DefaultVersion is assigned to apps installed without one
const DefaultVersion = "1.0.0"

// Filter narrows GetAllApps
type Filter struct {
	Category     string
	Search       string
	FavoriteOnly bool
}

// InstallApp persists a draft under a fresh id. The record, its files and
// the app_installed event commit together or not at all.
func (s *Store) InstallApp(ctx context.Context, draft *types.Draft) (string, error) {
	if draft == nil {
		return "", types.NewValidationError("draft", "is required")
	}
	device, err := s.DeviceID(ctx)
	if err != nil {
		return "", err
	}

	app := draft.App
	now := s.clock()
	app.ID = id.NewAppID().String()
	app.InstallDate = now
	app.LastUsed = now
	app.UsageCount = 0
	app.Favorite = false
	if app.Type == "" {
		app.Type = draft.Source
	}
	applyDefaults(&app)

	files := make([]types.AppFile, len(draft.Files))
	for i, f := range draft.Files {
		f.ID = 0
		f.AppID = app.ID
		files[i] = f
	}

	event := s.newEvent(types.ActionAppInstalled, types.Bag{
		"appId": app.ID,
		"name":  app.Name,
		"type":  string(app.Type),
		"files": len(files),
	}, device)

	err = s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		if len(files) > 0 {
			if err := tx.CreateInBatches(&files, 100).Error; err != nil {
				return err
			}
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return "", types.NewStorageError("install app", err)
	}

	s.logger.Info("App installed",
		zap.String("id", app.ID),
		zap.String("name", app.Name),
		zap.String("type", string(app.Type)),
		zap.Int("files", len(files)),
	)
	s.metrics.RecordInstall(string(app.Type))
	s.publish(event)
	return app.ID, nil
}

func applyDefaults(app *types.App) {
	if app.Tags == nil {
		app.Tags = []string{}
	}
	if strings.TrimSpace(app.Category) == "" {
		app.Category = types.DefaultCategory
	}
	if app.Version == "" {
		app.Version = DefaultVersion
	}
	if app.UsageCount < 0 {
		app.UsageCount = 0
	}
	if app.LastUsed.Before(app.InstallDate) {
		app.LastUsed = app.InstallDate
	}
}

// GetAllApps lists apps, most recently used first
func (s *Store) GetAllApps(ctx context.Context, f Filter) ([]types.App, error) {
	q := s.db.WithContext(ctx).Model(&types.App{})

	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.FavoriteOnly {
		q = q.Where("favorite = ?", true)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(IIF(json_valid(apps.tags), apps.tags, '[]')) WHERE LOWER(json_each.value) LIKE ? ESCAPE '\'))`, like, like, like)
	}

	var apps []types.App
	if err := q.Order("last_used DESC").Find(&apps).Error; err != nil {
		return nil, types.NewStorageError("list apps", err)
	}
	return apps, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetApp returns the app with appID or types.ErrAppNotFound
func (s *Store) GetApp(ctx context.Context, appID string) (*types.App, error) {
	var app types.App
	err := s.db.WithContext(ctx).First(&app, "id = ?", appID).Error
	if notFound(err) {
		return nil, types.ErrAppNotFound
	}
	if err != nil {
		return nil, types.NewStorageError("get app", err)
	}
	return &app, nil
}

// UpdateApp applies a partial update; it reports false when the app does not exist
func (s *Store) UpdateApp(ctx context.Context, appID string, u types.AppUpdate) (bool, error) {
	if u.Name != nil {
		if err := utils.ValidateName(*u.Name); err != nil {
			return false, err
		}
	}
	if u.Description != nil {
		if err := utils.ValidateDescription(*u.Description); err != nil {
			return false, err
		}
	}
	device, err := s.DeviceID(ctx)
	if err != nil {
		return false, err
	}

	var event types.SyncEvent
	err = s.tx(ctx, func(tx *gorm.DB) error {
		var app types.App
		if err := tx.First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		changed := applyUpdate(&app, u)
		if err := tx.Save(&app).Error; err != nil {
			return err
		}
		event = s.newEvent(types.ActionAppUpdated, types.Bag{"appId": appID, "fields": changed}, device)
		return tx.Create(&event).Error
	})
	if notFound(err) {
		return false, nil
	}
	if err != nil {
		return false, types.NewStorageError("update app", err)
	}

	s.publish(event)
	return true, nil
}

func applyUpdate(app *types.App, u types.AppUpdate) []string {
	var changed []string
	setString := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, field)
		}
	}
	setString("name", &app.Name, u.Name)
	setString("description", &app.Description, u.Description)
	setString("author", &app.Author, u.Author)
	setString("category", &app.Category, u.Category)
	setString("version", &app.Version, u.Version)
	setString("emoji", &app.Emoji, u.Emoji)
	setString("icon", &app.Icon, u.Icon)
	setString("favicon", &app.Favicon, u.Favicon)
	setString("url", &app.URL, u.URL)

	if u.Content != nil {
		content := *u.Content
		app.Content = &content
		changed = append(changed, "content")
	}
	if u.UseCustomIcon != nil {
		app.UseCustomIcon = *u.UseCustomIcon
		changed = append(changed, "useCustomIcon")
	}
	if u.Tags != nil {
		app.Tags = append([]string{}, (*u.Tags)...)
		changed = append(changed, "tags")
	}
	if u.Metadata != nil {
		if app.Metadata == nil {
			app.Metadata = types.Bag{}
		}
		for k, v := range u.Metadata {
			app.Metadata[k] = v
		}
		changed = append(changed, "metadata")
	}
	if strings.TrimSpace(app.Category) == "" {
		app.Category = types.DefaultCategory
	}
	return changed
}

// DeleteApp removes an app with its files and usage tallies; it reports
// false when the app does not exist
func (s *Store) DeleteApp(ctx context.Context, appID string) (bool, error) {
	device, err := s.DeviceID(ctx)
	if err != nil {
		return false, err
	}

	var event types.SyncEvent
	err = s.tx(ctx, func(tx *gorm.DB) error {
		var app types.App
		if err := tx.Select("id", "name").First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&types.AppFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&types.UsageTally{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&types.App{}, "id = ?", appID).Error; err != nil {
			return err
		}
		event = s.newEvent(types.ActionAppDeleted, types.Bag{"appId": appID, "name": app.Name}, device)
		return tx.Create(&event).Error
	})
	if notFound(err) {
		return false, nil
	}
	if err != nil {
		return false, types.NewStorageError("delete app", err)
	}

	s.logger.Info("App deleted", zap.String("id", appID))
	s.metrics.RecordDelete()
	s.publish(event)
	return true, nil
}

// UpdateLastUsed stamps the app as used now without touching usageCount
func (s *Store) UpdateLastUsed(ctx context.Context, appID string) error {
	res := s.db.WithContext(ctx).Model(&types.App{}).Where("id = ?", appID).Update("last_used", s.clock())
	if res.Error != nil {
		return types.NewStorageError("update last used", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.ErrAppNotFound
	}
	return nil
}

// RecordLaunch sets lastUsed to at, increments usageCount and bumps the
// tally for at's local day, all in one transaction
func (s *Store) RecordLaunch(ctx context.Context, appID string, at time.Time) (*types.App, error) {
	var app types.App
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		err := tx.Model(&types.App{}).Where("id = ?", appID).Updates(map[string]interface{}{
			"last_used":   at.UTC(),
			"usage_count": gorm.Expr("usage_count + ?", 1),
		}).Error
		if err != nil {
			return err
		}
		return bumpTally(tx, at.Local().Format(types.DayLayout), appID, 1)
	})
	if notFound(err) {
		return nil, types.ErrAppNotFound
	}
	if err != nil {
		return nil, types.NewStorageError("record launch", err)
	}

	app.LastUsed = at.UTC()
	app.UsageCount++
	return &app, nil
}

func bumpTally(tx *gorm.DB, day, appID string, n int64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "app_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("usage_tallies.count + ?", n)}),
	}).Create(&types.UsageTally{Date: day, AppID: appID, Count: n}).Error
}

// ToggleFavorite flips the favorite flag and returns the new value
func (s *Store) ToggleFavorite(ctx context.Context, appID string) (bool, error) {
	device, err := s.DeviceID(ctx)
	if err != nil {
		return false, err
	}

	var (
		favorite bool
		event    types.SyncEvent
	)
	err = s.tx(ctx, func(tx *gorm.DB) error {
		var app types.App
		if err := tx.Select("id", "favorite").First(&app, "id = ?", appID).Error; err != nil {
			return err
		}
		favorite = !app.Favorite
		if err := tx.Model(&types.App{}).Where("id = ?", appID).Update("favorite", favorite).Error; err != nil {
			return err
		}
		event = s.newEvent(types.ActionAppUpdated, types.Bag{"appId": appID, "fields": []string{"favorite"}}, device)
		return tx.Create(&event).Error
	})
	if notFound(err) {
		return false, types.ErrAppNotFound
	}
	if err != nil {
		return false, types.NewStorageError("toggle favorite", err)
	}

	s.publish(event)
	return favorite, nil
}

// GetAppFiles returns the files stored for an app in insertion order
func (s *Store) GetAppFiles(ctx context.Context, appID string) ([]types.AppFile, error) {
	var files []types.AppFile
	if err := s.db.WithContext(ctx).Where("app_id = ?", appID).Order("id").Find(&files).Error; err != nil {
		return nil, types.NewStorageError("get app files", err)
	}
	return files, nil
}

// FindAppByName returns the first app named name, or nil
func (s *Store) FindAppByName(ctx context.Context, name string) (*types.App, error) {
	var apps []types.App
	if err := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&apps).Error; err != nil {
		return nil, types.NewStorageError("find app", err)
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

// CountApps returns the number of installed apps
func (s *Store) CountApps(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&types.App{}).Count(&n).Error; err != nil {
		return 0, types.NewStorageError("count apps", err)
	}
	return n, nil
}

// Restore is a batch of records carried over from a backup or an older
// storage format
type Restore struct {
	Apps     []types.App
	Files    []types.AppFile
	Usage    []types.UsageTally
	Settings map[string]interface{}
	Source   string
}

// RestoreApps inserts r's apps under fresh ids, remapping files and usage
// tallies to the new ids, and returns the number of apps restored
func (s *Store) RestoreApps(ctx context.Context, r Restore) (int, error) {
	device, err := s.DeviceID(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock()

	var (
		event    types.SyncEvent
		restored int
	)
	err = s.tx(ctx, func(tx *gorm.DB) error {
		restored = 0
		ids := make(map[string]string, len(r.Apps))
		for _, app := range r.Apps {
			if strings.TrimSpace(app.Name) == "" {
				continue
			}
			oldID := app.ID
			app.ID = id.NewAppID().String()
			if app.InstallDate.IsZero() {
				app.InstallDate = now
			}
			if app.LastUsed.IsZero() {
				app.LastUsed = app.InstallDate
			}
			applyDefaults(&app)
			if err := tx.Create(&app).Error; err != nil {
				return err
			}
			restored++
			if oldID != "" {
				ids[oldID] = app.ID
			}
		}

		for _, f := range r.Files {
			newID, ok := ids[f.AppID]
			if !ok {
				continue
			}
			f.ID = 0
			f.AppID = newID
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
		}

		for _, u := range r.Usage {
			newID, ok := ids[u.AppID]
			if !ok || u.Count <= 0 {
				continue
			}
			if err := bumpTally(tx, u.Date, newID, u.Count); err != nil {
				return err
			}
		}

		for key, value := range r.Settings {
			if key == SettingDeviceID {
				continue
			}
			if err := putSetting(tx, key, value, now); err != nil {
				return err
			}
		}

		event = s.newEvent(types.ActionDataImported, types.Bag{"apps": restored, "source": r.Source}, device)
		return tx.Create(&event).Error
	})
	if err != nil {
		return 0, types.NewStorageError("restore apps", err)
	}

	s.logger.Info("Apps restored", zap.Int("count", restored), zap.String("source", r.Source))
	s.publish(event)
	return restored, nil
}
