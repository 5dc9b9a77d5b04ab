// Package service builds the long-lived components shared by the API server and the CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-dashboard/backend/internal/comparison"
	"github.com/aura-dashboard/backend/internal/llm"
	"github.com/aura-dashboard/backend/internal/report"
	"github.com/aura-dashboard/backend/internal/storage"
	"github.com/aura-dashboard/backend/internal/storage/reports"
	"github.com/aura-dashboard/backend/pkg/config"
	"github.com/aura-dashboard/backend/pkg/logger"
)

type Services struct {
	Backend      storage.Backend
	Store        *reports.Store
	Estimator    comparison.Estimator
	Orchestrator *comparison.Orchestrator
	Exporter     *report.Exporter
	// IDs stamps saved reports and drafts exported without being saved.
	IDs reports.IDGenerator
}

type Option func(*options)

type options struct {
	ids reports.IDGenerator
}

// WithIDs replaces the random UUID generator used for report identifiers.
func WithIDs(ids reports.IDGenerator) Option {
	return func(o *options) { o.ids = ids }
}

// New opens storage and constructs the estimator client. estimator may be nil, in which
// case the configured LLM client is used.
func New(ctx context.Context, cfg *config.Config, estimator comparison.Estimator, opts ...Option) (*Services, error) {
	o := options{ids: reports.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&o)
	}

	loc, err := cfg.Export.Location()
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}

	if estimator == nil {
		estimator = llm.NewClient(llm.Options{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			MaxAttempts: cfg.LLM.MaxAttempts,
		})
	}

	logger.Info("Services initialized",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("storage_key", cfg.Storage.Key),
		zap.String("export_timezone", loc.String()),
	)

	return &Services{
		Backend:      backend,
		Store:        reports.NewStore(backend, o.ids, cfg.Storage.Key),
		Estimator:    estimator,
		Orchestrator: comparison.NewOrchestrator(estimator, report.NewBuilder()),
		Exporter:     report.NewExporter(report.NewCSVEncoder(loc)),
		IDs:          o.ids,
	}, nil
}

func (s *Services) Close() error {
	if s.Backend == nil {
		return nil
	}
	return s.Backend.Close()
}
