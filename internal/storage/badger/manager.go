package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// Manager provides access to all Badger-backed storage services
type Manager struct {
	db      *BadgerDB
	cache   interfaces.CacheStorage
	jobs    interfaces.JobStorage
	metrics interfaces.MetricStorage
	logger  arbor.ILogger
}

// NewManager opens the database and wires the per-entity storages
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:      db,
		cache:   NewCacheStorage(db, logger),
		jobs:    NewJobStorage(db, logger),
		metrics: NewMetricStorage(db, logger),
		logger:  logger,
	}, nil
}

func (m *Manager) CacheStorage() interfaces.CacheStorage {
	return m.cache
}

func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobs
}

func (m *Manager) MetricStorage() interfaces.MetricStorage {
	return m.metrics
}

// Ping verifies the store is reachable with a cheap count query
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := m.db.Store().Count(&models.APIMetric{}, nil); err != nil {
		return &models.DatabaseError{Message: "store unavailable", Cause: err}
	}
	return nil
}

// GC reclaims value log space; safe to run while serving
func (m *Manager) GC(ctx context.Context) (int, error) {
	rewritten, err := m.db.RunGC(0.5)
	if err != nil {
		return rewritten, err
	}
	if rewritten > 0 {
		m.logger.Debug().Int("files", rewritten).Msg("Value log GC rewrote files")
	}
	return rewritten, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Ensure Manager implements StorageManager interface
var _ interfaces.StorageManager = (*Manager)(nil)
