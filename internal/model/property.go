package model

import "time"

// PricedUnit is a single sellable unit quoted in a developer brochure.
type PricedUnit struct {
	SizeSqft float64 `json:"size_sqft"`
	Price    float64 `json:"price"`
}

// PricingRecord is what a pricing source returns for one listing.
type PricingRecord struct {
	Developer      string       `json:"developer"`
	Units          []PricedUnit `json:"units"`
	Amenities      []string     `json:"amenities"`
	RERARegistered bool         `json:"rera_registered"`
	RERANumber     string       `json:"rera_number,omitempty"`
}

// PricedProperty is a priced, amenity-enriched unit derived from a listing.
// One listing expands into zero or more of these, one per kept unit.
type PricedProperty struct {
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Division       string    `json:"division"`
	Area           float64   `json:"area"` // sqft
	Price          float64   `json:"price"`
	PricePerSqft   float64   `json:"price_per_sqft"`
	Developer      string    `json:"developer"`
	Amenities      []string  `json:"amenities"`
	RERARegistered bool      `json:"rera_registered"`
	RERANumber     string    `json:"rera_number,omitempty"`
	ApprovalNumber string    `json:"project_approval"`
	ApprovalDate   time.Time `json:"approval_date"`

	// Populated by the scoring stage.
	Scores     map[string]float64 `json:"scores,omitempty"`
	TotalScore float64            `json:"total_score"`
}
