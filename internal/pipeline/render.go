package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// rupees renders amounts with grouped digits for the summary text.
var rupees = message.NewPrinter(language.English)

// Render formats the final Context into the response payload. It only
// reads the Context; raw stage errors stay in the structured trace, never
// in the primary message.
func Render(sc *model.Context) *model.ChatResponse {
	var parts []string

	if len(sc.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Processing completed with %d issue(s).", len(sc.Errors)))
	} else {
		parts = append(parts, "Search completed successfully!")
	}

	if len(sc.Recommendations) > 0 {
		parts = append(parts, fmt.Sprintf("\nFound %d matching properties:", len(sc.Recommendations)))
		for i, rec := range sc.Recommendations {
			parts = append(parts, rupees.Sprintf(
				"\n%d. %s\n   Price: ₹%.0f\n   Area: %.0f sqft\n   Developer: %s\n   Score: %.2f/100",
				i+1, rec.Name, rec.Price, rec.Area, rec.Developer, rec.TotalScore,
			))
		}
	} else {
		parts = append(parts, "\nNo properties found matching your criteria.")
	}

	if sc.Reasoning != "" {
		parts = append(parts, fmt.Sprintf("\n\nRecommendation: %s", sc.Reasoning))
	}

	properties := make([]model.PropertyView, 0, len(sc.Recommendations))
	for i, rec := range sc.Recommendations {
		properties = append(properties, model.PropertyView{
			ID:           i + 1,
			Name:         rec.Name,
			Location:     rec.Location,
			Area:         rec.Area,
			Price:        rec.Price,
			PricePerSqft: rec.PricePerSqft,
			PropertyType: "plot",
			Status:       "available",
			CreatedAt:    sc.StartedAt,
			UpdatedAt:    sc.StartedAt,
		})
	}

	return &model.ChatResponse{
		Response:       strings.Join(parts, "\n"),
		SearchCriteria: sc.Criteria(),
		Properties:     properties,
		Reasoning:      sc.Reasoning,
		WorkflowTrace:  sc.TraceSummary(),
	}
}
