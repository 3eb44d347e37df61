package pipeline

import (
	"context"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// acquireStage pulls candidate listings from the inventory source for
// the parsed division/location. On failure candidate_listings stays empty.
func (p *Pipeline) acquireStage(ctx context.Context, sc *model.Context) {
	p.runStage(sc, model.StageAcquire, func() (model.StageStatus, map[string]any, error) {
		listings, err := p.source.List(ctx, sc.Division, sc.Location)
		if err != nil {
			return model.StageStatusFailed, map[string]any{"division": sc.Division}, err
		}

		sc.CandidateListings = listings

		return model.StageStatusSuccess, map[string]any{
			"division":        sc.Division,
			"approvals_found": len(listings),
			"source":          sourceName(p.source),
		}, nil
	})
}

func sourceName(src any) string {
	if n, ok := src.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "inventory source"
}
