package pipeline

import (
	"math"
	"sort"

	"github.com/plotscout/plotscout-cli/internal/model"

	"github.com/plotscout/plotscout-cli/internal/config"
)

// Score map keys, as they appear in the rendered payload.
const (
	ScorePrice     = "price_score"
	ScoreArea      = "area_score"
	ScoreRERA      = "rera_score"
	ScoreAmenities = "amenities_score"
	ScoreDeveloper = "developer_score"
)

// ScoreProperties computes the multi-factor suitability score for each
// property and returns a new slice ordered by total score descending
// (stable on ties). Price normalization bounds come from the current batch
// only; no state survives between invocations.
func ScoreProperties(props []model.PricedProperty, w config.ScoreWeights, optimalArea float64) []model.PricedProperty {
	if len(props) == 0 {
		return nil
	}

	minPrice, maxPrice := priceBounds(props)
	denom := maxPrice - minPrice
	if denom == 0 {
		// Equal prices: full marks for everyone rather than divide-by-zero.
		denom = 1
	}

	scored := make([]model.PricedProperty, len(props))
	copy(scored, props)

	for i := range scored {
		p := &scored[i]
		scores := make(map[string]float64, 5)

		// Lower price is better, normalized inverse-linear over the batch.
		scores[ScorePrice] = round2(w.Price * (1 - (p.Price-minPrice)/denom))

		// Proximity to the optimal unit size, bounded decay with distance.
		if p.Area > 0 {
			diff := math.Abs(p.Area - optimalArea)
			scores[ScoreArea] = round2(w.Area * (1 - diff/(optimalArea+diff)))
		} else {
			scores[ScoreArea] = 0
		}

		// Unregistered listings keep partial trust, never zero.
		if p.RERARegistered {
			scores[ScoreRERA] = w.RERARegistered
		} else {
			scores[ScoreRERA] = w.RERAUnlisted
		}

		scores[ScoreAmenities] = math.Min(w.AmenityCap, w.AmenityPerItem*float64(len(p.Amenities)))

		// Placeholder pending a real reputation signal.
		scores[ScoreDeveloper] = w.DeveloperScore

		total := 0.0
		for _, s := range scores {
			total += s
		}

		p.Scores = scores
		p.TotalScore = round2(total)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})

	return scored
}

// priceBounds returns the min/max over positive prices in the batch, with
// the 0/1 fallback when no property carries a price.
func priceBounds(props []model.PricedProperty) (float64, float64) {
	minP := math.Inf(1)
	maxP := math.Inf(-1)
	for _, p := range props {
		if p.Price <= 0 {
			continue
		}
		minP = math.Min(minP, p.Price)
		maxP = math.Max(maxP, p.Price)
	}
	if math.IsInf(minP, 1) {
		return 0, 1
	}
	return minP, maxP
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// scoreStage scores the priced properties and keeps the top N as
// recommendations. Empty input is an info outcome, not a failure.
func (p *Pipeline) scoreStage(sc *model.Context) {
	p.runStage(sc, model.StageScore, func() (model.StageStatus, map[string]any, error) {
		if len(sc.PricedProperties) == 0 {
			return model.StageStatusInfo, map[string]any{"message": "No properties to compare"}, nil
		}

		scored := ScoreProperties(sc.PricedProperties, p.cfg.Pipeline.Weights, p.cfg.Pipeline.OptimalAreaSqft)

		topN := p.cfg.Pipeline.TopRecommendations
		if topN <= 0 || topN > len(scored) {
			topN = len(scored)
		}
		sc.Recommendations = scored[:topN]

		return model.StageStatusSuccess, map[string]any{
			"properties_compared":       len(sc.PricedProperties),
			"recommendations_generated": len(sc.Recommendations),
			"scoring_factors":           []string{"price", "area", "amenities", "rera_status", "developer"},
		}, nil
	})
}
