package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// DefaultStoreLimit caps SearchStoreCatalog when no limit is given
const DefaultStoreLimit = 50

// StoreQuery narrows SearchStoreCatalog
type StoreQuery struct {
	Category string
	Featured bool
	Limit    int
}

// ReplaceStoreCatalog swaps the app-store listing for entries
func (s *Store) ReplaceStoreCatalog(ctx context.Context, entries []types.StoreEntry) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&types.StoreEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]types.StoreEntry, len(entries))
		for i, e := range entries {
			e.ID = 0
			if e.Categories == nil {
				e.Categories = []string{}
			}
			rows[i] = e
		}
		return tx.CreateInBatches(&rows, 100).Error
	})
	if err != nil {
		return types.NewStorageError("replace store catalog", err)
	}
	return nil
}

// SearchStoreCatalog lists listings matching query, most downloaded first
func (s *Store) SearchStoreCatalog(ctx context.Context, query string, q StoreQuery) ([]types.StoreEntry, error) {
	db := s.db.WithContext(ctx).Model(&types.StoreEntry{})

	if term := strings.TrimSpace(query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\')`, like, like, like)
	}
	if q.Featured {
		db = db.Where("featured = ?", true)
	}
	if q.Category != "" {
		// categories is a JSON array of strings
		db = db.Where(`categories LIKE ? ESCAPE '\'`, `%"`+escapeLike(q.Category)+`"%`)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultStoreLimit
	}

	var entries []types.StoreEntry
	if err := db.Order("downloads DESC").Order("name").Limit(limit).Find(&entries).Error; err != nil {
		return nil, types.NewStorageError("search store catalog", err)
	}
	return entries, nil
}
