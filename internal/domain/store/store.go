package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"

	_ "modernc.org/sqlite"
)

// Store is the structured persistence layer
type Store struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	logger  *logging.Logger
	metrics *monitoring.Metrics
	now     func() time.Time

	subMu       sync.RWMutex
	subscribers []func(types.SyncEvent)

	deviceMu sync.Mutex
	deviceID string
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces time.Now; used by tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics attaches metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Open opens (creating if needed) the database at path and migrates it
func Open(path string, log *logging.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = logging.NewNop()
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// WAL keeps readers unblocked while the single writer commits
	for _, pragma := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA synchronous = NORMAL;"} {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&types.App{},
		&types.AppFile{},
		&types.Setting{},
		&types.SyncEvent{},
		&types.UsageTally{},
		&types.StoreEntry{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Store{
		db:     db,
		sqlDB:  sqlDB,
		logger: log.Named("store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("Store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// Subscribe registers fn to be called after each committed sync event
func (s *Store) Subscribe(fn func(types.SyncEvent)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(events ...types.SyncEvent) {
	s.subMu.RLock()
	subs := append([]func(types.SyncEvent){}, s.subscribers...)
	s.subMu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// tx runs fn in a transaction bound to ctx
func (s *Store) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Store) newEvent(action string, data types.Bag, device string) types.SyncEvent {
	return types.SyncEvent{
		Action:    action,
		Data:      data,
		Timestamp: s.clock(),
		DeviceID:  device,
	}
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
