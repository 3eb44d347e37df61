package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/plotscout/plotscout-cli/internal/config"
	"github.com/plotscout/plotscout-cli/internal/model"
	"github.com/plotscout/plotscout-cli/internal/resilience"
	"github.com/plotscout/plotscout-cli/pkg/anthropic"
)

// Narrator produces the human-readable recommendation summary. Callers
// substitute FallbackReasoning when it fails; narration never fails a run.
type Narrator interface {
	Summarize(ctx context.Context, sc *model.Context, top []model.PricedProperty) (string, error)
}

// FallbackReasoning is the deterministic summary used when narration fails.
func FallbackReasoning(count int) string {
	return fmt.Sprintf("Based on your criteria, we found %d matching properties. Please review the details above for more information.", count)
}

const narrateSystem = `You summarize property recommendations for a home buyer. Given the user's criteria and the top scored properties, reply with a brief recommendation summary of 2-3 sentences explaining why these properties are suitable. Plain text only.`

// AnthropicNarrator implements Narrator over the Anthropic API.
type AnthropicNarrator struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewNarrator creates an Anthropic-backed narrator.
func NewNarrator(client anthropic.Client, cfg config.AnthropicConfig) *AnthropicNarrator {
	return &AnthropicNarrator{client: client, cfg: cfg}
}

func (n *AnthropicNarrator) Summarize(ctx context.Context, sc *model.Context, top []model.PricedProperty) (string, error) {
	temp := 0.5
	resp, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return n.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       n.cfg.NarrateModel,
			MaxTokens:   n.cfg.MaxTokens,
			System:      narrateSystem,
			Messages:    []anthropic.Message{{Role: "user", Content: narratePrompt(sc, top)}},
			Temperature: &temp,
		})
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogUsage(n.cfg.NarrateModel, "narrate")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("llm: empty narration output")
	}
	return text, nil
}

func narratePrompt(sc *model.Context, top []model.PricedProperty) string {
	var b strings.Builder

	b.WriteString("User criteria:\n")
	fmt.Fprintf(&b, "- Location: %s\n", orDefault(sc.Location, "Not specified"))
	fmt.Fprintf(&b, "- Size: %s - %s sqft\n", boundOr(sc.MinSize, "0"), boundOr(sc.MaxSize, "No limit"))
	fmt.Fprintf(&b, "- Budget: Rs %s - %s\n", boundOr(sc.MinPrice, "0"), boundOr(sc.MaxPrice, "No limit"))
	fmt.Fprintf(&b, "- Requirements: %s\n", orDefault(sc.AdditionalRequirements, "None"))

	b.WriteString("\nTop recommendations:\n")
	for _, p := range top {
		fmt.Fprintf(&b, "- %s: Rs %.0f, %.0f sqft, Developer: %s, Score: %.2f\n",
			p.Name, p.Price, p.Area, p.Developer, p.TotalScore)
	}

	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func boundOr(v *float64, def string) string {
	if v == nil {
		return def
	}
	return fmt.Sprintf("%.0f", *v)
}
