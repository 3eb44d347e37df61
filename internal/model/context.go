package model

import (
	"time"
)

// StageStatus represents the outcome of a single pipeline stage.
type StageStatus string

const (
	StageStatusSuccess StageStatus = "success"
	StageStatusFailed  StageStatus = "failed"
	StageStatusInfo    StageStatus = "info"
)

// Stage names as they appear in the workflow trace.
const (
	StageExtract      = "extract"
	StageAcquire      = "acquire"
	StageFilterRank   = "filter_rank"
	StageEnrich       = "enrich"
	StageScore        = "score"
	StageNarrate      = "narrate"
	StageOrchestrator = "orchestrator"
)

// StageResult is one entry in the workflow trace. Every stage invocation
// appends exactly one, success or not.
type StageResult struct {
	Stage     string         `json:"stage"`
	Status    StageStatus    `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Context is the single mutable record threaded through every pipeline
// stage for one search request. Each stage writes its own output field
// exactly once and appends to Trace; nothing else shares the instance.
type Context struct {
	OriginalQuery string `json:"original_query"`

	// Parsed search criteria. Nil pointer means the bound is absent;
	// present bounds are inclusive.
	Location               string   `json:"location,omitempty"`
	Division               string   `json:"division,omitempty"`
	PropertyType           string   `json:"property_type,omitempty"`
	AdditionalRequirements string   `json:"additional_requirements,omitempty"`
	MinSize                *float64 `json:"min_size,omitempty"`
	MaxSize                *float64 `json:"max_size,omitempty"`
	MinPrice               *float64 `json:"min_price,omitempty"`
	MaxPrice               *float64 `json:"max_price,omitempty"`

	CandidateListings []Listing        `json:"candidate_listings,omitempty"`
	FilteredListings  []Listing        `json:"filtered_listings,omitempty"`
	PricedProperties  []PricedProperty `json:"priced_properties,omitempty"`
	Recommendations   []PricedProperty `json:"recommendations,omitempty"`
	Reasoning         string           `json:"reasoning,omitempty"`

	Trace     []StageResult `json:"trace"`
	Errors    []string      `json:"errors"`
	StartedAt time.Time     `json:"started_at"`
}

// NewContext creates a fresh Context for one incoming query.
func NewContext(query string) *Context {
	return &Context{
		OriginalQuery: query,
		StartedAt:     time.Now().UTC(),
	}
}

// AddStageResult appends one trace entry. A non-empty errMsg also lands in
// Errors, prefixed with the stage name, so Errors stays exactly the ordered
// extraction of non-empty trace errors.
func (c *Context) AddStageResult(stage string, status StageStatus, details map[string]any, errMsg string) {
	c.Trace = append(c.Trace, StageResult{
		Stage:     stage,
		Status:    status,
		Details:   details,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	})
	if errMsg != "" {
		c.Errors = append(c.Errors, stage+": "+errMsg)
	}
}

// Criteria returns the echoed search criteria for the response payload.
func (c *Context) Criteria() SearchCriteria {
	sc := SearchCriteria{
		Location:     c.Location,
		Division:     c.Division,
		PropertyType: c.PropertyType,
	}
	if c.MinSize != nil {
		sc.MinSize = *c.MinSize
	}
	if c.MinPrice != nil {
		sc.MinPrice = *c.MinPrice
	}
	sc.MaxSize = c.MaxSize
	sc.MaxPrice = c.MaxPrice
	return sc
}

// TraceSummary builds the structured workflow trace for the response payload.
func (c *Context) TraceSummary() WorkflowTrace {
	return WorkflowTrace{
		OriginalQuery:       c.OriginalQuery,
		Location:            c.Location,
		Division:            c.Division,
		PropertyType:        c.PropertyType,
		SizeRange:           Bounds{Min: c.MinSize, Max: c.MaxSize},
		PriceRange:          Bounds{Min: c.MinPrice, Max: c.MaxPrice},
		CandidateCount:      len(c.CandidateListings),
		FilteredCount:       len(c.FilteredListings),
		PropertyCount:       len(c.PricedProperties),
		RecommendationCount: len(c.Recommendations),
		Stages:              c.Trace,
		Errors:              c.Errors,
	}
}
