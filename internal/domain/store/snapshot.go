package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/id"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// ExportAllData snapshots every table
func (s *Store) ExportAllData(ctx context.Context) (*types.Snapshot, error) {
	device, err := s.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	data := &types.SnapshotData{}
	db := s.db.WithContext(ctx)
	for _, q := range []struct {
		name string
		dst  interface{}
		ord  string
	}{
		{"apps", &data.Apps, "install_date"},
		{"settings", &data.Settings, "key"},
		{"sync events", &data.SyncEvents, "id"},
		{"app files", &data.AppFiles, "id"},
		{"usage", &data.Usage, "date"},
	} {
		if err := db.Order(q.ord).Find(q.dst).Error; err != nil {
			return nil, types.NewStorageError("export "+q.name, err)
		}
	}

	return &types.Snapshot{
		Version:   types.SnapshotVersion,
		Timestamp: s.clock(),
		DeviceID:  device,
		Data:      data,
	}, nil
}

// ImportData merges a snapshot: apps and usage are upserted by key, an
// imported app's files replace the ones stored under its id, settings are
// upserted except the local device id, and sync events already present
// (same device, action and timestamp) are skipped. Usage tallies are kept
// only for apps carried by the snapshot.
func (s *Store) ImportData(ctx context.Context, snap *types.Snapshot) error {
	if snap == nil || snap.Data == nil {
		return fmt.Errorf("%w: snapshot has no data section", types.ErrImportFormat)
	}
	device, err := s.DeviceID(ctx)
	if err != nil {
		return err
	}
	data := snap.Data
	now := s.clock()

	var event types.SyncEvent
	err = s.tx(ctx, func(tx *gorm.DB) error {
		imported := make(map[string]bool, len(data.Apps))
		for i := range data.Apps {
			app := data.Apps[i]
			if app.ID == "" {
				app.ID = id.NewAppID().String()
			}
			if app.InstallDate.IsZero() {
				app.InstallDate = now
			}
			applyDefaults(&app)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&app).Error; err != nil {
				return err
			}
			imported[app.ID] = true
		}

		for appID := range imported {
			if err := tx.Where("app_id = ?", appID).Delete(&types.AppFile{}).Error; err != nil {
				return err
			}
		}
		for _, f := range data.AppFiles {
			if !imported[f.AppID] {
				continue
			}
			f.ID = 0
			if err := tx.Create(&f).Error; err != nil {
				return err
			}
		}

		for _, setting := range data.Settings {
			if setting.Key == "" || setting.Key == SettingDeviceID {
				continue
			}
			if setting.LastModified.IsZero() {
				setting.LastModified = now
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&setting).Error; err != nil {
				return err
			}
		}

		seen, err := eventKeys(tx)
		if err != nil {
			return err
		}
		for _, ev := range data.SyncEvents {
			k := keyOf(ev)
			if seen[k] > 0 {
				seen[k]--
				continue
			}
			ev.ID = 0
			if err := tx.Create(&ev).Error; err != nil {
				return err
			}
		}

		for _, u := range data.Usage {
			if u.Date == "" || !imported[u.AppID] {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&u).Error; err != nil {
				return err
			}
		}

		event = s.newEvent(types.ActionDataImported, types.Bag{
			"apps":       len(data.Apps),
			"settings":   len(data.Settings),
			"syncEvents": len(data.SyncEvents),
			"fromDevice": snap.DeviceID,
		}, device)
		return tx.Create(&event).Error
	})
	if err != nil {
		return types.NewStorageError("import data", err)
	}

	s.logger.Info("Snapshot imported",
		zap.Int("apps", len(data.Apps)),
		zap.String("from_device", snap.DeviceID),
	)
	s.publish(event)
	return nil
}

type eventKey struct {
	device string
	action string
	at     int64
}

func keyOf(ev types.SyncEvent) eventKey {
	return eventKey{device: ev.DeviceID, action: ev.Action, at: ev.Timestamp.UnixNano()}
}

// eventKeys counts the stored events per natural key
func eventKeys(tx *gorm.DB) (map[eventKey]int, error) {
	var rows []types.SyncEvent
	if err := tx.Select("device_id", "action", "timestamp").Find(&rows).Error; err != nil {
		return nil, err
	}
	keys := make(map[eventKey]int, len(rows))
	for _, ev := range rows {
		keys[keyOf(ev)]++
	}
	return keys, nil
}
