package store

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/id"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Well-known setting keys
const (
	SettingDeviceID       = "deviceId"
	SettingViewMode       = "viewMode"
	SettingSortBy         = "sortBy"
	SettingTheme          = "theme"
	SettingLegacyMigrated = "legacyMigrated"
)

// SetSetting upserts key with value encoded as JSON
func (s *Store) SetSetting(ctx context.Context, key string, value interface{}) error {
	if key == "" {
		return types.NewValidationError("key", "is required")
	}
	if err := putSetting(s.db.WithContext(ctx), key, value, s.clock()); err != nil {
		return types.NewStorageError("set setting", err)
	}
	return nil
}

func putSetting(tx *gorm.DB, key string, value interface{}, now time.Time) error {
	raw, err := sonic.MarshalString(value)
	if err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&types.Setting{
		Key:          key,
		Value:        raw,
		LastModified: now,
	}).Error
}

// GetSetting returns the decoded value for key, or def when unset
func (s *Store) GetSetting(ctx context.Context, key string, def interface{}) (interface{}, error) {
	if key == "" {
		return def, nil
	}
	var setting types.Setting
	err := s.db.WithContext(ctx).Where(&types.Setting{Key: key}).First(&setting).Error
	if notFound(err) {
		return def, nil
	}
	if err != nil {
		return nil, types.NewStorageError("get setting", err)
	}

	var value interface{}
	if err := sonic.UnmarshalString(setting.Value, &value); err != nil {
		s.logger.Warn("Undecodable setting, using default", zap.String("key", key), zap.Error(err))
		return def, nil
	}
	return value, nil
}

// GetSettingString returns a string setting, or def when unset or not a string
func (s *Store) GetSettingString(ctx context.Context, key, def string) (string, error) {
	v, err := s.GetSetting(ctx, key, def)
	if err != nil {
		return def, err
	}
	if str, ok := v.(string); ok {
		return str, nil
	}
	return def, nil
}

// GetAllSettings returns every setting decoded
func (s *Store) GetAllSettings(ctx context.Context) (map[string]interface{}, error) {
	var settings []types.Setting
	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, types.NewStorageError("list settings", err)
	}

	out := make(map[string]interface{}, len(settings))
	for _, setting := range settings {
		var value interface{}
		if err := sonic.UnmarshalString(setting.Value, &value); err != nil {
			continue
		}
		out[setting.Key] = value
	}
	return out, nil
}

// DeviceID returns this installation's device id, creating and persisting
// it on first use
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	if s.deviceID != "" {
		return s.deviceID, nil
	}

	stored, err := s.GetSettingString(ctx, SettingDeviceID, "")
	if err != nil {
		return "", err
	}
	if stored == "" {
		stored = id.NewDeviceID().String()
		if err := s.SetSetting(ctx, SettingDeviceID, stored); err != nil {
			return "", err
		}
		s.logger.Info("Device id created", zap.String("device", stored))
	}

	s.deviceID = stored
	return stored, nil
}
