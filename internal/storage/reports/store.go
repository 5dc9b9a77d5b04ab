// Package reports owns the durable, append-only collection of saved comparison reports.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/metrics"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/pkg/logger"
)

const DefaultKey = "auraSavedReports"

// Backend is the key-value slot the collection is serialized into.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type IDGenerator interface {
	Next() string
}

// UUIDGenerator issues random v4 UUIDs. Collisions are not checked for.
type UUIDGenerator struct{}

func (UUIDGenerator) Next() string {
	return uuid.NewString()
}

// CorruptionError describes a persisted value that is not a JSON array of reports, or
// holds an element without an id or with a chartData that is not a pair.
// The store recovers from it and never returns it.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("stored value under %q is not a report array: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// Store serializes the whole collection on every write. The mutex orders read-modify-write
// cycles within a process; a second process writing the same key is not coordinated with.
type Store struct {
	backend Backend
	ids     IDGenerator
	key     string

	mu sync.Mutex
}

func NewStore(backend Backend, ids IDGenerator, key string) *Store {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if key == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, ids: ids, key: key}
}

func (s *Store) Key() string {
	return s.key
}

// LoadAll returns every saved report in append order. An absent slot is an empty
// collection. A corrupt slot is logged, reset to [] and reported as empty.
func (s *Store) LoadAll(ctx context.Context) ([]report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append stamps d with a fresh id and adds it to the end of the collection.
func (s *Store) Append(ctx context.Context, d report.Draft) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return report.Report{}, err
	}

	r := d.WithID(s.ids.Next())
	all = append(all, r)

	if err := s.write(ctx, all); err != nil {
		return report.Report{}, err
	}

	metrics.ReportsSaved.Inc()
	logger.Info("Report saved",
		zap.String("report_id", r.ID),
		zap.String("title", r.Title),
		zap.Int("collection_size", len(all)),
	)

	return r, nil
}

// Clear resets the collection to empty.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, []report.Report{}); err != nil {
		return err
	}
	logger.Info("Saved reports cleared", zap.String("key", s.key))
	return nil
}

func (s *Store) load(ctx context.Context) ([]report.Report, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved reports: %w", err)
	}
	if !ok {
		return []report.Report{}, nil
	}

	all, decodeErr := decode(raw)
	if decodeErr == nil {
		return all, nil
	}

	corrupt := &CorruptionError{Key: s.key, Err: decodeErr}
	metrics.StorageCorruptionRecovered.Inc()
	logger.Warn("Discarding corrupt saved reports", zap.String("key", s.key), zap.Error(corrupt))

	if err := s.write(ctx, []report.Report{}); err != nil {
		logger.Error("Failed to reset corrupt saved reports", zap.String("key", s.key), zap.Error(err))
	}
	return []report.Report{}, nil
}

// entryShape holds the fields whose presence and cardinality decode checks before a
// stored element is accepted as a report.
type entryShape struct {
	ID        *string           `json:"id"`
	ChartData []json.RawMessage `json:"chartData"`
}

func decode(raw string) ([]report.Report, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, fmt.Errorf("value is null")
	}

	all := make([]report.Report, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		var shape entryShape
		if err := json.Unmarshal(item, &shape); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if shape.ID == nil || *shape.ID == "" {
			return nil, fmt.Errorf("element %d: missing id", i)
		}
		if _, dup := seen[*shape.ID]; dup {
			return nil, fmt.Errorf("element %d: duplicate id %q", i, *shape.ID)
		}
		if len(shape.ChartData) != len(report.Draft{}.ChartData) {
			return nil, fmt.Errorf("element %d: chartData has %d entries, want 2", i, len(shape.ChartData))
		}
		seen[*shape.ID] = struct{}{}

		var r report.Report
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		all = append(all, r)
	}
	return all, nil
}

func (s *Store) write(ctx context.Context, all []report.Report) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode saved reports: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to write saved reports: %w", err)
	}
	return nil
}
