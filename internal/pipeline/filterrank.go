package pipeline

import (
	"fmt"
	"sort"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// FilterAndSort drops listings below the minimum approved area (inclusive
// threshold) and orders the rest by approval date, most recent first. The
// sort is stable, so date ties keep their original relative order. Safe for
// empty input.
func FilterAndSort(listings []model.Listing, minAreaAcres float64) []model.Listing {
	filtered := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if l.ApprovedArea >= minAreaAcres {
			filtered = append(filtered, l)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ApprovalDate.After(filtered[j].ApprovalDate)
	})

	return filtered
}

// filterRankStage applies FilterAndSort to the candidate listings. On
// failure filtered_listings keeps its prior value.
func (p *Pipeline) filterRankStage(sc *model.Context) {
	p.runStage(sc, model.StageFilterRank, func() (model.StageStatus, map[string]any, error) {
		minArea := p.cfg.Pipeline.MinAreaAcres

		filtered := FilterAndSort(sc.CandidateListings, minArea)
		sc.FilteredListings = filtered

		return model.StageStatusSuccess, map[string]any{
			"initial_count":   len(sc.CandidateListings),
			"filtered_count":  len(filtered),
			"min_area_filter": fmt.Sprintf("%g acres", minArea),
			"sort_by":         "approval_date (descending)",
		}, nil
	})
}
