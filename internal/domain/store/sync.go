package store

import (
	"context"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// AddSyncEvent appends an event to the mutation log
func (s *Store) AddSyncEvent(ctx context.Context, action string, data types.Bag) error {
	if action == "" {
		return types.NewValidationError("action", "is required")
	}
	device, err := s.DeviceID(ctx)
	if err != nil {
		return err
	}

	event := s.newEvent(action, data, device)
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return types.NewStorageError("add sync event", err)
	}
	s.publish(event)
	return nil
}

// GetUnsyncedEvents returns pending events, oldest first
func (s *Store) GetUnsyncedEvents(ctx context.Context) ([]types.SyncEvent, error) {
	var events []types.SyncEvent
	if err := s.db.WithContext(ctx).Where("synced = ?", false).Order("id").Find(&events).Error; err != nil {
		return nil, types.NewStorageError("list unsynced events", err)
	}
	return events, nil
}

// GetSyncEvents returns the newest events, newest first
func (s *Store) GetSyncEvents(ctx context.Context, limit int) ([]types.SyncEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []types.SyncEvent
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, types.NewStorageError("list sync events", err)
	}
	return events, nil
}

// MarkEventsSynced flags the given events as synced
func (s *Store) MarkEventsSynced(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&types.SyncEvent{}).Where("id IN ?", ids).Update("synced", true).Error
	if err != nil {
		return types.NewStorageError("mark events synced", err)
	}
	return nil
}
