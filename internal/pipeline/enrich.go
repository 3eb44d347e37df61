package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// UnitBounds holds the user's inclusive per-unit size/price bounds. Nil
// means the bound is absent and imposes no constraint.
type UnitBounds struct {
	MinSize  *float64
	MaxSize  *float64
	MinPrice *float64
	MaxPrice *float64
}

// ExpandUnits turns one listing and its pricing record into zero or more
// priced properties, one per unit that satisfies every present bound.
// RERA status and amenities carry through verbatim onto every unit.
func ExpandUnits(listing model.Listing, rec model.PricingRecord, b UnitBounds) []model.PricedProperty {
	props := make([]model.PricedProperty, 0, len(rec.Units))

	for _, u := range rec.Units {
		if b.MinSize != nil && u.SizeSqft < *b.MinSize {
			continue
		}
		if b.MaxSize != nil && u.SizeSqft > *b.MaxSize {
			continue
		}
		if b.MinPrice != nil && u.Price < *b.MinPrice {
			continue
		}
		if b.MaxPrice != nil && u.Price > *b.MaxPrice {
			continue
		}

		perSqft := 0.0
		if u.SizeSqft > 0 {
			perSqft = u.Price / u.SizeSqft
		}

		props = append(props, model.PricedProperty{
			Name:           fmt.Sprintf("%s - %.0f sqft", listing.ProjectName, u.SizeSqft),
			Location:       listing.Location,
			Division:       listing.Division,
			Area:           u.SizeSqft,
			Price:          u.Price,
			PricePerSqft:   perSqft,
			Developer:      rec.Developer,
			Amenities:      rec.Amenities,
			RERARegistered: rec.RERARegistered,
			RERANumber:     rec.RERANumber,
			ApprovalNumber: listing.ApprovalNumber,
			ApprovalDate:   listing.ApprovalDate,
		})
	}

	return props
}

// enrichStage fetches a pricing record for each of the top filtered
// listings and expands kept units into priced_properties. A listing with
// no brochure contributes nothing; a per-listing fetch failure is recorded
// in the stage details and does not fail the batch.
func (p *Pipeline) enrichStage(ctx context.Context, sc *model.Context) {
	p.runStage(sc, model.StageEnrich, func() (model.StageStatus, map[string]any, error) {
		top := sc.FilteredListings
		if limit := p.cfg.Pipeline.TopListings; limit > 0 && len(top) > limit {
			top = top[:limit]
		}

		bounds := UnitBounds{
			MinSize:  sc.MinSize,
			MaxSize:  sc.MaxSize,
			MinPrice: sc.MinPrice,
			MaxPrice: sc.MaxPrice,
		}

		props := make([]model.PricedProperty, 0, len(top))
		contacted := 0
		var skipped []string

		for _, listing := range top {
			rec, err := p.fetcher.Fetch(ctx, listing)
			if err != nil {
				zap.L().Warn("pipeline: pricing fetch failed",
					zap.String("project", listing.ProjectName),
					zap.Error(err),
				)
				skipped = append(skipped, fmt.Sprintf("%s: %v", listing.ProjectName, err))
				continue
			}
			if rec == nil {
				// No brochure for this project; normal outcome.
				continue
			}

			contacted++
			props = append(props, ExpandUnits(listing, *rec, bounds)...)
		}

		sc.PricedProperties = props

		details := map[string]any{
			"top_projects_processed": len(top),
			"properties_found":       len(props),
			"developers_contacted":   contacted,
		}
		if len(skipped) > 0 {
			details["skipped"] = skipped
		}

		return model.StageStatusSuccess, details, nil
	})
}
