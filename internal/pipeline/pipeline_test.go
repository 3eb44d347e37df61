package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotscout/plotscout-cli/internal/config"
	"github.com/plotscout/plotscout-cli/internal/inventory"
	"github.com/plotscout/plotscout-cli/internal/llm"
	"github.com/plotscout/plotscout-cli/internal/model"
	"github.com/plotscout/plotscout-cli/internal/pricing"
	"github.com/plotscout/plotscout-cli/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			MinAreaAcres:       5.0,
			TopListings:        10,
			TopRecommendations: 5,
			OptimalAreaSqft:    1200,
			Weights: config.ScoreWeights{
				Price:          30,
				Area:           25,
				RERARegistered: 20,
				RERAUnlisted:   10,
				AmenityPerItem: 3,
				AmenityCap:     15,
				DeveloperScore: 8,
			},
		},
	}
}

type stubExtractor struct {
	crit *llm.Criteria
	err  error
}

func (s stubExtractor) Extract(context.Context, string) (*llm.Criteria, error) {
	return s.crit, s.err
}

type stubSource struct {
	listings []model.Listing
	err      error
}

func (s stubSource) List(context.Context, string, string) ([]model.Listing, error) {
	return s.listings, s.err
}

type stubFetcher struct {
	recs map[string]*model.PricingRecord
	errs map[string]error
}

func (s stubFetcher) Fetch(_ context.Context, l model.Listing) (*model.PricingRecord, error) {
	if err, ok := s.errs[l.ProjectName]; ok {
		return nil, err
	}
	return s.recs[l.ProjectName], nil
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Summarize(context.Context, *model.Context, []model.PricedProperty) (string, error) {
	return s.text, s.err
}

type captureStore struct {
	store.Store
	saved *model.SearchRun
	err   error
}

func (c *captureStore) SaveRun(_ context.Context, run *model.SearchRun) error {
	c.saved = run
	return c.err
}

// stageOrder extracts the stage names from a trace in append order.
func stageOrder(trace []model.StageResult) []string {
	names := make([]string, len(trace))
	for i, st := range trace {
		names[i] = st.Stage
	}
	return names
}

var allStages = []string{
	model.StageExtract, model.StageAcquire, model.StageFilterRank,
	model.StageEnrich, model.StageScore, model.StageNarrate,
}

func TestRunHappyPath(t *testing.T) {
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Kanakapura", Division: "South"}},
		inventory.NewMockSource(),
		pricing.NewMockFetcher(),
		stubNarrator{text: "Kanakapura Layout - Phase 1 offers the best value for money."},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "plots near Kanakapura"})

	require.NotNil(t, resp)
	assert.Empty(t, resp.WorkflowTrace.Errors)
	assert.Equal(t, allStages, stageOrder(resp.WorkflowTrace.Stages))
	for _, st := range resp.WorkflowTrace.Stages {
		assert.Equal(t, model.StageStatusSuccess, st.Status, st.Stage)
	}

	assert.Contains(t, resp.Response, "Search completed successfully!")
	assert.Contains(t, resp.Response, "Recommendation: Kanakapura Layout - Phase 1 offers the best value")
	assert.NotEmpty(t, resp.Properties)
	assert.LessOrEqual(t, len(resp.Properties), 5)
	assert.Equal(t, "Kanakapura", resp.SearchCriteria.Location)
	assert.Equal(t, len(resp.Properties), resp.WorkflowTrace.RecommendationCount)
}

func TestRunExtractFailureContinues(t *testing.T) {
	p := New(testConfig(),
		stubExtractor{err: errors.New("model unavailable")},
		inventory.NewMockSource(),
		pricing.NewMockFetcher(),
		stubNarrator{text: "ok"},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "anything"})

	require.NotNil(t, resp)
	// All six stages still appear, exactly once each.
	assert.Equal(t, allStages, stageOrder(resp.WorkflowTrace.Stages))
	assert.Equal(t, model.StageStatusFailed, resp.WorkflowTrace.Stages[0].Status)
	assert.Equal(t, []string{"extract: model unavailable"}, resp.WorkflowTrace.Errors)
	assert.Contains(t, resp.Response, "Processing completed with 1 issue(s).")

	// Mock source ignores empty filters, so the run still finds properties.
	assert.NotEmpty(t, resp.Properties)
}

func TestRunNoMatches(t *testing.T) {
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Whitefield", Division: "East"}},
		stubSource{},
		pricing.NewMockFetcher(),
		stubNarrator{text: "should not be called"},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "plots in Whitefield"})

	require.NotNil(t, resp)
	assert.Empty(t, resp.WorkflowTrace.Errors)
	assert.Empty(t, resp.Properties)
	assert.Equal(t, NoMatchReasoning, resp.Reasoning)
	assert.Contains(t, resp.Response, "No properties found matching your criteria.")

	byStage := map[string]model.StageResult{}
	for _, st := range resp.WorkflowTrace.Stages {
		byStage[st.Stage] = st
	}
	assert.Equal(t, model.StageStatusInfo, byStage[model.StageScore].Status)
	assert.Equal(t, model.StageStatusInfo, byStage[model.StageNarrate].Status)
}

func TestRunPricingFailureIsContained(t *testing.T) {
	listings := []model.Listing{
		{ProjectName: "Alpha", ApprovedArea: 8, Location: "Kanakapura", Division: "South"},
		{ProjectName: "Beta", ApprovedArea: 9, Location: "Kanakapura", Division: "South"},
	}
	recs := map[string]*model.PricingRecord{
		"Beta": {
			Developer:      "Beta Developers",
			Units:          []model.PricedUnit{{SizeSqft: 1200, Price: 3600000}},
			RERARegistered: true,
		},
	}

	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Kanakapura", Division: "South"}},
		stubSource{listings: listings},
		stubFetcher{recs: recs, errs: map[string]error{"Alpha": errors.New("brochure timeout")}},
		stubNarrator{text: "Beta wins."},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "plots"})

	// The per-listing failure never fails the enrich stage or the run.
	assert.Empty(t, resp.WorkflowTrace.Errors)

	var enrich model.StageResult
	for _, st := range resp.WorkflowTrace.Stages {
		if st.Stage == model.StageEnrich {
			enrich = st
		}
	}
	assert.Equal(t, model.StageStatusSuccess, enrich.Status)
	skipped, ok := enrich.Details["skipped"].([]string)
	require.True(t, ok)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "Alpha")
	assert.Equal(t, 1, enrich.Details["developers_contacted"])

	require.Len(t, resp.Properties, 1)
	assert.Contains(t, resp.Properties[0].Name, "Beta")
}

func TestRunNarrationFallback(t *testing.T) {
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Kanakapura", Division: "South"}},
		inventory.NewMockSource(),
		pricing.NewMockFetcher(),
		stubNarrator{err: errors.New("rate limited")},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "plots"})

	// Narration failures degrade to the fallback text, not a failed stage.
	assert.Empty(t, resp.WorkflowTrace.Errors)
	assert.Equal(t, llm.FallbackReasoning(len(resp.Properties)), resp.Reasoning)

	for _, st := range resp.WorkflowTrace.Stages {
		if st.Stage == model.StageNarrate {
			assert.Equal(t, model.StageStatusSuccess, st.Status)
			assert.Equal(t, true, st.Details["fallback"])
		}
	}
}

type panicSource struct{}

func (panicSource) List(context.Context, string, string) ([]model.Listing, error) {
	panic("index out of range")
}

func TestRunRecoversFromPanic(t *testing.T) {
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{}},
		panicSource{},
		pricing.NewMockFetcher(),
		stubNarrator{},
		nil,
	)

	resp := p.Run(context.Background(), Request{Query: "plots"})

	require.NotNil(t, resp)
	last := resp.WorkflowTrace.Stages[len(resp.WorkflowTrace.Stages)-1]
	assert.Equal(t, model.StageOrchestrator, last.Stage)
	assert.Equal(t, model.StageStatusFailed, last.Status)
	assert.Contains(t, last.Error, "index out of range")
	assert.NotEmpty(t, resp.WorkflowTrace.Errors)
}

func TestRunPersistsToStore(t *testing.T) {
	cs := &captureStore{}
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Kanakapura", Division: "South"}},
		inventory.NewMockSource(),
		pricing.NewMockFetcher(),
		stubNarrator{text: "ok"},
		cs,
	)

	resp := p.Run(context.Background(), Request{Query: "plots", SessionID: "sess-9"})

	require.NotNil(t, cs.saved)
	assert.Equal(t, "anonymous", cs.saved.UserID)
	assert.Equal(t, "sess-9", cs.saved.SessionID)
	assert.Equal(t, "plots", cs.saved.Query)
	assert.Equal(t, model.RunStatusCompleted, cs.saved.Status)
	assert.Equal(t, len(resp.Properties), cs.saved.ResultsCount)
	assert.Len(t, cs.saved.Trace.Stages, 6)
}

func TestRunStoreFailureDoesNotAffectResponse(t *testing.T) {
	cs := &captureStore{err: errors.New("disk full")}
	p := New(testConfig(),
		stubExtractor{crit: &llm.Criteria{Location: "Kanakapura", Division: "South"}},
		inventory.NewMockSource(),
		pricing.NewMockFetcher(),
		stubNarrator{text: "ok"},
		cs,
	)

	resp := p.Run(context.Background(), Request{Query: "plots"})

	require.NotNil(t, resp)
	assert.Empty(t, resp.WorkflowTrace.Errors)
	assert.Contains(t, resp.Response, "Search completed successfully!")
}
