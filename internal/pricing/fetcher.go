package pricing

import (
	"context"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// Fetcher obtains a pricing/amenity record for one listing. A nil record
// with nil error means the source has no brochure for the project; that is
// a normal outcome, not a failure.
type Fetcher interface {
	Fetch(ctx context.Context, listing model.Listing) (*model.PricingRecord, error)
}

// MockFetcher serves fixed developer brochures keyed by project name. It
// stands in for live brochure scrapers.
type MockFetcher struct {
	brochures map[string]model.PricingRecord
}

// NewMockFetcher creates a fetcher backed by the built-in brochure fixtures.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{brochures: mockBrochures()}
}

// NewMockFetcherWith creates a fetcher backed by the given brochures.
func NewMockFetcherWith(brochures map[string]model.PricingRecord) *MockFetcher {
	return &MockFetcher{brochures: brochures}
}

func (f *MockFetcher) Fetch(_ context.Context, listing model.Listing) (*model.PricingRecord, error) {
	rec, ok := f.brochures[listing.ProjectName]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func mockBrochures() map[string]model.PricingRecord {
	return map[string]model.PricingRecord{
		"Kanakapura Layout - Phase 1": {
			Developer: "Sri Developers",
			Units: []model.PricedUnit{
				{SizeSqft: 1200, Price: 3600000}, // 30x40
				{SizeSqft: 1200, Price: 3500000},
			},
			Amenities:      []string{"Water Supply", "Electricity", "Road Access"},
			RERARegistered: true,
			RERANumber:     "REG/BLR/001",
		},
		"Kanakapura Green Acres": {
			Developer: "Green Earth Projects",
			Units: []model.PricedUnit{
				{SizeSqft: 1200, Price: 3200000},
				{SizeSqft: 1200, Price: 3100000},
			},
			Amenities:      []string{"Water Supply", "Electricity", "Green Space", "Security Gate"},
			RERARegistered: true,
			RERANumber:     "REG/BLR/002",
		},
		"Kanakpura Residency": {
			Developer: "Kanakpura Builders",
			Units: []model.PricedUnit{
				{SizeSqft: 1200, Price: 3800000},
				{SizeSqft: 1200, Price: 3700000},
			},
			Amenities:      []string{"Water Supply", "Electricity", "Gated Community", "Park"},
			RERARegistered: true,
			RERANumber:     "REG/BLR/003",
		},
	}
}
