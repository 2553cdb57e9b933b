package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// MetricStorage implements the MetricStorage interface for Badger
type MetricStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMetricStorage creates a new MetricStorage instance
func NewMetricStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MetricStorage {
	return &MetricStorage{
		db:     db,
		logger: logger,
	}
}

// RecordMetric stores one request metric. Callers treat failures as
// best-effort: a metric write error never fails the request.
func (s *MetricStorage) RecordMetric(ctx context.Context, metric *models.APIMetric) error {
	if metric.ID == "" {
		return fmt.Errorf("metric ID is required")
	}
	if err := s.db.Store().Upsert(metric.ID, metric); err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

func (s *MetricStorage) CountMetrics(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.APIMetric{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count metrics: %w", err)
	}
	return int(count), nil
}
