package store

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// GetStats summarizes the store
func (s *Store) GetStats(ctx context.Context) (*types.StoreStats, error) {
	db := s.db.WithContext(ctx)
	stats := &types.StoreStats{}

	counts := []struct {
		model interface{}
		where string
		dst   *int64
	}{
		{&types.App{}, "", &stats.TotalApps},
		{&types.AppFile{}, "", &stats.TotalFiles},
		{&types.Setting{}, "", &stats.SettingsCount},
		{&types.App{}, "favorite = true", &stats.FavoriteApps},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, types.NewStorageError("stats", err)
		}
	}

	if err := db.Model(&types.App{}).Distinct("category").Count(&stats.Categories).Error; err != nil {
		return nil, types.NewStorageError("stats", err)
	}

	var latest []types.App
	if err := db.Select("install_date").Order("install_date DESC").Limit(1).Find(&latest).Error; err != nil {
		return nil, types.NewStorageError("stats", err)
	}
	if len(latest) == 1 {
		at := latest[0].InstallDate
		stats.LastInstall = &at
	}

	var pageCount, pageSize int64
	if err := db.Raw("PRAGMA page_count").Scan(&pageCount).Error; err != nil {
		return nil, types.NewStorageError("stats", err)
	}
	if err := db.Raw("PRAGMA page_size").Scan(&pageSize).Error; err != nil {
		return nil, types.NewStorageError("stats", err)
	}
	stats.DBSize = pageCount * pageSize

	return stats, nil
}

// UsageSince returns daily tallies from since's local day onward
func (s *Store) UsageSince(ctx context.Context, since time.Time) ([]types.UsageTally, error) {
	var tallies []types.UsageTally
	err := s.db.WithContext(ctx).
		Where("date >= ?", since.Local().Format(types.DayLayout)).
		Order("date, app_id").
		Find(&tallies).Error
	if err != nil {
		return nil, types.NewStorageError("usage", err)
	}
	return tallies, nil
}

// UsageByDay groups every tally as day -> app id -> launches
func (s *Store) UsageByDay(ctx context.Context) (map[string]map[string]int64, error) {
	tallies, err := s.UsageSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]int64)
	for _, t := range tallies {
		if out[t.Date] == nil {
			out[t.Date] = make(map[string]int64)
		}
		out[t.Date][t.AppID] = t.Count
	}
	return out, nil
}
