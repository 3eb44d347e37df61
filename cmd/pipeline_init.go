package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/inventory"
	"github.com/plotscout/plotscout-cli/internal/llm"
	"github.com/plotscout/plotscout-cli/internal/pipeline"
	"github.com/plotscout/plotscout-cli/internal/pricing"
	"github.com/plotscout/plotscout-cli/internal/store"
	anthropicpkg "github.com/plotscout/plotscout-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline shared by the
// ask/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured search-history backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "plotscout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, LLM clients, and listing sources, and
// builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	extractor := llm.NewExtractor(anthropicClient, cfg.Anthropic)
	narrator := llm.NewNarrator(anthropicClient, cfg.Anthropic)

	var source inventory.Source
	switch cfg.Inventory.Mode {
	case "http":
		source = inventory.NewHTTPSource(cfg.Inventory)
		zap.L().Info("inventory source: http", zap.String("base_url", cfg.Inventory.BaseURL))
	default:
		source = inventory.NewMockSource()
		zap.L().Info("inventory source: mock fixtures")
	}

	fetcher := pricing.NewMockFetcher()

	p := pipeline.New(cfg, extractor, source, fetcher, narrator, st)

	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
