package model

import "time"

// Bounds is an optional inclusive numeric range; nil means unbounded.
type Bounds struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// SearchCriteria echoes the parsed criteria back to the caller.
type SearchCriteria struct {
	Location     string   `json:"location"`
	Division     string   `json:"division,omitempty"`
	MinSize      float64  `json:"min_size"`
	MaxSize      *float64 `json:"max_size,omitempty"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
}

// PropertyView is one ranked property as rendered in the response payload.
type PropertyView struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Area         float64   `json:"area"`
	Price        float64   `json:"price"`
	PricePerSqft float64   `json:"price_per_sqft"`
	PropertyType string    `json:"property_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WorkflowTrace is the structured audit log for one request.
type WorkflowTrace struct {
	OriginalQuery       string        `json:"original_query"`
	Location            string        `json:"location,omitempty"`
	Division            string        `json:"division,omitempty"`
	PropertyType        string        `json:"property_type,omitempty"`
	SizeRange           Bounds        `json:"size_range"`
	PriceRange          Bounds        `json:"price_range"`
	CandidateCount      int           `json:"candidate_listings_count"`
	FilteredCount       int           `json:"filtered_listings_count"`
	PropertyCount       int           `json:"properties_count"`
	RecommendationCount int           `json:"recommendations_count"`
	Stages              []StageResult `json:"stages"`
	Errors              []string      `json:"errors"`
}

// ChatResponse is the rendered result of one pipeline run. The transport
// layer serializes it verbatim.
type ChatResponse struct {
	Response       string         `json:"response"`
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Properties     []PropertyView `json:"properties"`
	Reasoning      string         `json:"reasoning"`
	WorkflowTrace  WorkflowTrace  `json:"workflow_trace"`
}
