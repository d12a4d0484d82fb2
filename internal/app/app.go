// Package app builds the event question-answering stack from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/eventqa/internal/config"
	"github.com/raphaelgruber/eventqa/internal/db"
	"github.com/raphaelgruber/eventqa/internal/embedding"
	"github.com/raphaelgruber/eventqa/internal/llm"
	"github.com/raphaelgruber/eventqa/internal/memstore"
	"github.com/raphaelgruber/eventqa/internal/metrics"
	"github.com/raphaelgruber/eventqa/internal/pgstore"
	"github.com/raphaelgruber/eventqa/internal/query"
	"github.com/raphaelgruber/eventqa/internal/retriever"
	"github.com/raphaelgruber/eventqa/internal/search"
	"github.com/raphaelgruber/eventqa/internal/service"
)

// App holds every long-lived dependency. Build it once at startup and Close it on exit.
type App struct {
	Config  config.Config
	Store   search.Catalog
	Encoder embedding.Encoder
	Model   *llm.Model // nil when the LLM provider is "none"
	Metrics *metrics.Collector
	Query   *service.QueryService
	Ingest  *service.IngestService

	logger *slog.Logger
	close  func(context.Context) error
}

// New connects to the configured store and model providers.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	base, err := embedding.New(ctx, cfg, logger)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}
	encoder, err := embedding.NewCached(base, cfg.EmbedCacheSize)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}

	model, err := llm.NewModel(ctx, cfg, logger)
	switch {
	case errors.Is(err, llm.ErrDisabled):
		logger.Info("LLM disabled, answers will be the matching events")
	case err != nil:
		_ = closeStore(ctx)
		return nil, err
	}

	mc := metrics.NewCollector()
	a, err := assemble(cfg, store, encoder, model, mc, logger)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}
	a.close = closeStore
	return a, nil
}

// NewWithDeps wires an App around already constructed components.
// A nil model disables generation and LLM term extraction.
func NewWithDeps(cfg config.Config, store search.Catalog, encoder embedding.Encoder, model *llm.Model, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return assemble(cfg, store, encoder, model, metrics.NewCollector(), logger)
}

func assemble(
	cfg config.Config,
	store search.Catalog,
	encoder embedding.Encoder,
	model *llm.Model,
	mc *metrics.Collector,
	logger *slog.Logger,
) (*App, error) {
	r, err := retriever.New(encoder, store, retriever.Options{
		Weights:      cfg.Weights(),
		MinScore:     cfg.MinScore,
		EmbedTimeout: cfg.EmbedTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create retriever: %w", err)
	}

	var (
		extractor query.TermExtractor = query.KeywordExtractor{}
		generator service.Generator
	)
	if model != nil {
		extractor = model
		generator = model
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Encoder: encoder,
		Model:   model,
		Metrics: mc,
		Query: service.NewQueryService(
			r,
			query.NewRefiner(extractor, cfg.TermsTimeout, logger),
			generator,
			mc,
			service.QueryOptions{TopK: cfg.TopK, GenerateTimeout: cfg.GenerateTimeout},
			logger,
		),
		Ingest: service.NewIngestService(store, encoder, logger),
		logger: logger,
		close:  func(context.Context) error { return nil },
	}, nil
}

// openStore connects to the configured backend and prepares its schema.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (search.Catalog, func(context.Context) error, error) {
	switch cfg.Store {
	case config.StoreSurreal:
		client, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
			Dimension: cfg.EmbedDimension,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, nil, err
		}
		return client, client.Close, nil

	case config.StorePostgres:
		store, err := pgstore.New(ctx, cfg.PostgresURL, cfg.EmbedDimension, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := store.InitSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func(context.Context) error { store.Close(); return nil }, nil

	case config.StoreMemory:
		return memstore.New(cfg.EmbedDimension), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Seed imports cfg.SeedFile when one is configured.
func (a *App) Seed(ctx context.Context) error {
	if a.Config.SeedFile == "" {
		return nil
	}
	res, err := a.Ingest.ImportFile(ctx, a.Config.SeedFile, nil)
	if err != nil {
		return fmt.Errorf("seed events: %w", err)
	}
	a.logger.Info("seeded events", "file", a.Config.SeedFile, "added", res.Added, "failed", len(res.Failures))
	return nil
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	if a.close == nil {
		return nil
	}
	return a.close(ctx)
}
