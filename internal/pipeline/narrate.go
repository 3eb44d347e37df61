package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/llm"
	"github.com/plotscout/plotscout-cli/internal/model"
)

// NoMatchReasoning is the reasoning text for a run with no recommendations.
const NoMatchReasoning = "No properties found matching your criteria."

// narrateStage turns the top recommendations into reasoning text. A
// narration failure degrades to the deterministic fallback sentence and
// never fails the run.
func (p *Pipeline) narrateStage(ctx context.Context, sc *model.Context) {
	p.runStage(sc, model.StageNarrate, func() (model.StageStatus, map[string]any, error) {
		if len(sc.Recommendations) == 0 {
			sc.Reasoning = NoMatchReasoning
			return model.StageStatusInfo, map[string]any{"message": "No recommendations available"}, nil
		}

		details := map[string]any{
			"recommendations_count": len(sc.Recommendations),
			"top_recommendation":    sc.Recommendations[0].Name,
		}

		reasoning, err := p.narrator.Summarize(ctx, sc, sc.Recommendations)
		if err != nil {
			zap.L().Warn("pipeline: narration failed, using fallback", zap.Error(err))
			sc.Reasoning = llm.FallbackReasoning(len(sc.Recommendations))
			details["fallback"] = true
			return model.StageStatusSuccess, details, nil
		}

		sc.Reasoning = reasoning
		return model.StageStatusSuccess, details, nil
	})
}
