package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/plotscout/plotscout-cli/internal/config"
	"github.com/plotscout/plotscout-cli/internal/division"
	"github.com/plotscout/plotscout-cli/internal/resilience"
	"github.com/plotscout/plotscout-cli/pkg/anthropic"
)

// Criteria is the structured output of criteria extraction. Nil pointers
// and empty strings mean the field was not mentioned in the query.
type Criteria struct {
	Location               string   `json:"location"`
	Division               string   `json:"division"`
	MinSize                *float64 `json:"min_size"`
	MaxSize                *float64 `json:"max_size"`
	MinPrice               *float64 `json:"min_price"`
	MaxPrice               *float64 `json:"max_price"`
	PropertyType           string   `json:"property_type"`
	AdditionalRequirements string   `json:"additional_requirements"`
}

// ParseError indicates the model could not produce well-formed criteria.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: unparseable criteria output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor turns a free-text query into structured search criteria.
type Extractor interface {
	Extract(ctx context.Context, query string) (*Criteria, error)
}

const extractSystem = `You extract structured property search criteria from user queries about Bangalore real estate. Respond with a single JSON object and nothing else:
{
  "location": "specific location name if mentioned, else empty string",
  "division": "North, South, East or West if determinable, else empty string",
  "min_size": minimum plot size in sqft or null,
  "max_size": maximum plot size in sqft or null,
  "min_price": minimum price in rupees or null,
  "max_price": maximum price in rupees or null,
  "property_type": "plot, apartment, villa or commercial, else empty string",
  "additional_requirements": "any other requirements as one string"
}`

// AnthropicExtractor implements Extractor over the Anthropic API.
type AnthropicExtractor struct {
	client anthropic.Client
	cfg    config.AnthropicConfig
}

// NewExtractor creates an Anthropic-backed criteria extractor.
func NewExtractor(client anthropic.Client, cfg config.AnthropicConfig) *AnthropicExtractor {
	return &AnthropicExtractor{client: client, cfg: cfg}
}

func (e *AnthropicExtractor) Extract(ctx context.Context, query string) (*Criteria, error) {
	temp := 0.0
	resp, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       e.cfg.ExtractModel,
			MaxTokens:   e.cfg.MaxTokens,
			System:      extractSystem,
			Messages:    []anthropic.Message{{Role: "user", Content: query}},
			Temperature: &temp,
		})
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogUsage(e.cfg.ExtractModel, "extract")

	crit, err := ParseCriteria(resp.Text())
	if err != nil {
		return nil, err
	}
	return crit, nil
}

// ParseCriteria parses the model output into Criteria. The division is
// backfilled from the location table when the model left it empty.
func ParseCriteria(text string) (*Criteria, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" || !strings.HasPrefix(cleaned, "{") {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("no JSON object in output")}
	}

	var crit Criteria
	if err := json.Unmarshal([]byte(cleaned), &crit); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	if crit.Division == "" && crit.Location != "" {
		if d, ok := division.FromLocation(crit.Location); ok {
			crit.Division = string(d)
		} else {
			zap.L().Debug("llm: location has no division mapping",
				zap.String("location", crit.Location),
			)
		}
	}
	if d, ok := division.Parse(crit.Division); ok {
		crit.Division = string(d)
	} else {
		crit.Division = ""
	}

	return &crit, nil
}

// cleanJSON strips markdown fences and surrounding prose, keeping the
// first { through the last }.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
