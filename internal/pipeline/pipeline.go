package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/config"
	"github.com/plotscout/plotscout-cli/internal/inventory"
	"github.com/plotscout/plotscout-cli/internal/llm"
	"github.com/plotscout/plotscout-cli/internal/model"
	"github.com/plotscout/plotscout-cli/internal/pricing"
	"github.com/plotscout/plotscout-cli/internal/store"
)

// Pipeline drives one search query through the fixed stage sequence:
// extract, acquire, filter_rank, enrich, score, narrate. Every stage runs
// even when a predecessor failed; a failed stage records its error in the
// trace and leaves its output field untouched, so downstream stages see a
// safe, logically-empty value.
type Pipeline struct {
	cfg       *config.Config
	extractor llm.Extractor
	source    inventory.Source
	fetcher   pricing.Fetcher
	narrator  llm.Narrator
	store     store.Store // optional; nil disables run history
}

// New creates a Pipeline with all collaborators. st may be nil.
func New(
	cfg *config.Config,
	extractor llm.Extractor,
	source inventory.Source,
	fetcher pricing.Fetcher,
	narrator llm.Narrator,
	st store.Store,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		source:    source,
		fetcher:   fetcher,
		narrator:  narrator,
		store:     st,
	}
}

// Request identifies one incoming query.
type Request struct {
	Query     string
	UserID    string
	SessionID string
}

// Run executes the full stage sequence for one query and always returns a
// rendered response, regardless of how many stages failed.
func (p *Pipeline) Run(ctx context.Context, req Request) *model.ChatResponse {
	sc := model.NewContext(req.Query)
	log := zap.L().With(zap.String("query", req.Query))
	log.Info("pipeline: starting search")

	func() {
		// A panic escaping a stage is a defect; record it and still render.
		defer func() {
			if r := recover(); r != nil {
				log.Error("pipeline: orchestrator recovered", zap.Any("panic", r))
				sc.AddStageResult(model.StageOrchestrator, model.StageStatusFailed,
					map[string]any{"query": req.Query}, fmt.Sprintf("%v", r))
			}
		}()

		p.extractStage(ctx, sc)
		p.acquireStage(ctx, sc)
		p.filterRankStage(sc)
		p.enrichStage(ctx, sc)
		p.scoreStage(sc)
		p.narrateStage(ctx, sc)
	}()

	resp := Render(sc)

	p.persist(ctx, sc, req)

	log.Info("pipeline: search complete",
		zap.Int("recommendations", len(sc.Recommendations)),
		zap.Int("errors", len(sc.Errors)),
	)
	return resp
}

// runStage invokes fn and appends exactly one trace entry for it. On error
// the stage's details still land in the trace, and the error string joins
// the context's error list.
func (p *Pipeline) runStage(sc *model.Context, stage string, fn func() (model.StageStatus, map[string]any, error)) {
	start := time.Now()
	status, details, err := fn()
	duration := time.Since(start).Milliseconds()

	if err != nil {
		zap.L().Error("pipeline: stage failed",
			zap.String("stage", stage),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
		sc.AddStageResult(stage, model.StageStatusFailed, details, err.Error())
		return
	}

	zap.L().Info("pipeline: stage complete",
		zap.String("stage", stage),
		zap.String("status", string(status)),
		zap.Int64("duration_ms", duration),
	)
	sc.AddStageResult(stage, status, details, "")
}

// persist writes the run to the history store, fire-and-forget: a storage
// failure is logged and never alters the already-rendered response.
func (p *Pipeline) persist(ctx context.Context, sc *model.Context, req Request) {
	if p.store == nil {
		return
	}

	status := model.RunStatusCompleted
	if len(sc.Errors) > 0 {
		status = model.RunStatusCompletedWithErrors
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	run := &model.SearchRun{
		ID:           uuid.New().String(),
		UserID:       userID,
		SessionID:    req.SessionID,
		Query:        sc.OriginalQuery,
		Criteria:     sc.Criteria(),
		ResultsCount: len(sc.Recommendations),
		Status:       status,
		Trace:        sc.TraceSummary(),
		CreatedAt:    sc.StartedAt,
	}

	if err := p.store.SaveRun(ctx, run); err != nil {
		zap.L().Warn("pipeline: failed to persist run", zap.Error(err))
	}
}
