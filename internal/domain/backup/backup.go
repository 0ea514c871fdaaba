package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/domain/store"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// MaxDocumentBytes bounds a backup document read into memory
const MaxDocumentBytes = 256 << 20

// Store is the persistence backups need; satisfied by *store.Store
type Store interface {
	ExportAllData(ctx context.Context) (*types.Snapshot, error)
	ImportData(ctx context.Context, snap *types.Snapshot) error
	GetAllApps(ctx context.Context, f store.Filter) ([]types.App, error)
	UsageByDay(ctx context.Context) (map[string]map[string]int64, error)
	GetSettingString(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key string, value interface{}) error
	RestoreApps(ctx context.Context, r store.Restore) (int, error)
}

// Service runs backups against a store
type Service struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// New creates a backup service
func New(s Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{store: s, logger: log.Named("backup"), now: time.Now}
}

// ExportJSON writes the full store snapshot as indented JSON
func (s *Service) ExportJSON(ctx context.Context, w io.Writer) error {
	snap, err := s.store.ExportAllData(ctx)
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	s.logger.Info("JSON backup exported", zap.Int("apps", len(snap.Data.Apps)), zap.Int("bytes", len(data)))
	return nil
}

// ImportJSON reads a snapshot written by ExportJSON and merges it
func (s *Service) ImportJSON(ctx context.Context, r io.Reader) error {
	data, err := readAll(r)
	if err != nil {
		return err
	}
	var snap types.Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", types.ErrImportFormat, err)
	}
	if err := s.store.ImportData(ctx, &snap); err != nil {
		return err
	}
	s.logger.Info("JSON backup imported", zap.String("from_device", snap.DeviceID))
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", types.ErrImportFormat, MaxDocumentBytes)
	}
	return data, nil
}
