package pipeline

import (
	"context"

	"github.com/plotscout/plotscout-cli/internal/llm"
	"github.com/plotscout/plotscout-cli/internal/model"
)

// extractStage parses the free-text query into structured criteria. On
// failure the run continues with all-default criteria.
func (p *Pipeline) extractStage(ctx context.Context, sc *model.Context) {
	p.runStage(sc, model.StageExtract, func() (model.StageStatus, map[string]any, error) {
		crit, err := p.extractor.Extract(ctx, sc.OriginalQuery)
		if err != nil {
			return model.StageStatusFailed, map[string]any{"query": sc.OriginalQuery}, err
		}

		sc.Location = crit.Location
		sc.Division = crit.Division
		sc.PropertyType = crit.PropertyType
		sc.AdditionalRequirements = crit.AdditionalRequirements
		sc.MinSize = crit.MinSize
		sc.MaxSize = crit.MaxSize
		sc.MinPrice = crit.MinPrice
		sc.MaxPrice = crit.MaxPrice

		return model.StageStatusSuccess, map[string]any{
			"parsed_criteria":  crit,
			"fields_extracted": countExtracted(crit),
		}, nil
	})
}

func countExtracted(c *llm.Criteria) int {
	n := 0
	for _, s := range []string{c.Location, c.Division, c.PropertyType, c.AdditionalRequirements} {
		if s != "" {
			n++
		}
	}
	for _, v := range []*float64{c.MinSize, c.MaxSize, c.MinPrice, c.MaxPrice} {
		if v != nil {
			n++
		}
	}
	return n
}
