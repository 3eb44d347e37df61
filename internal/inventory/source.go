package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// Source yields approved-layout listings for a division and location.
// Either filter may be empty; matching is case-insensitive, substring for
// location and equality for division. Implementations may also return the
// full set and let the caller filter.
type Source interface {
	List(ctx context.Context, division, location string) ([]model.Listing, error)
}

// MockSource serves a fixed set of planning-authority approvals. It stands
// in for the live scrapers and is the default source.
type MockSource struct {
	listings []model.Listing
}

// NewMockSource creates a source backed by the built-in approval fixtures.
func NewMockSource() *MockSource {
	return &MockSource{listings: mockApprovals()}
}

// NewMockSourceWith creates a source backed by the given listings.
func NewMockSourceWith(listings []model.Listing) *MockSource {
	return &MockSource{listings: listings}
}

// Name identifies the source in the workflow trace.
func (s *MockSource) Name() string {
	return "Kanakapura Planning Authority (Mock)"
}

func (s *MockSource) List(_ context.Context, div, loc string) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if div != "" && !strings.EqualFold(l.Division, div) {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(loc)) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func mockApprovals() []model.Listing {
	return []model.Listing{
		{
			ProjectName:      "Kanakapura Layout - Phase 1",
			ApprovalNumber:   "KPA/2022/001",
			ApprovalDate:     time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC),
			ApprovedArea:     8.5,
			Location:         "Kanakapura",
			Division:         "South",
			Authority:        "Kanakapura Planning Authority",
			DeveloperContact: "Sri Developers",
		},
		{
			ProjectName:      "Kanakapura Green Acres",
			ApprovalNumber:   "KPA/2021/045",
			ApprovalDate:     time.Date(2021, 11, 20, 0, 0, 0, 0, time.UTC),
			ApprovedArea:     6.2,
			Location:         "Kanakapura",
			Division:         "South",
			Authority:        "Kanakapura Planning Authority",
			DeveloperContact: "Green Earth Projects",
		},
		{
			ProjectName:      "Kanakpura Residency",
			ApprovalNumber:   "KPA/2023/012",
			ApprovalDate:     time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			ApprovedArea:     10.0,
			Location:         "Kanakapura",
			Division:         "South",
			Authority:        "Kanakapura Planning Authority",
			DeveloperContact: "Kanakpura Builders",
		},
	}
}
