package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// WriteRun writes one stored search run to an xlsx workbook with a Summary
// sheet and a Stages sheet.
func WriteRun(run *model.SearchRun, path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	writeSummary(summary, run)

	stages, err := f.AddSheet("Stages")
	if err != nil {
		return eris.Wrap(err, "export: add stages sheet")
	}
	writeStages(stages, run.Trace.Stages)

	return eris.Wrap(f.Save(path), "export: save workbook")
}

// WriteProperties writes ranked properties to an xlsx workbook with a
// single Recommendations sheet.
func WriteProperties(props []model.PropertyView, path string) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add recommendations sheet")
	}

	addRow(sheet, "Rank", "Name", "Location", "Area (sqft)", "Price (Rs)", "Price/sqft", "Type", "Status")
	for _, p := range props {
		addRow(sheet,
			fmt.Sprintf("%d", p.ID),
			p.Name,
			p.Location,
			fmt.Sprintf("%.0f", p.Area),
			fmt.Sprintf("%.0f", p.Price),
			fmt.Sprintf("%.2f", p.PricePerSqft),
			p.PropertyType,
			p.Status,
		)
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

func writeSummary(sheet *xlsx.Sheet, run *model.SearchRun) {
	addRow(sheet, "Field", "Value")
	addRow(sheet, "Run ID", run.ID)
	addRow(sheet, "Query", run.Query)
	addRow(sheet, "User", run.UserID)
	addRow(sheet, "Status", string(run.Status))
	addRow(sheet, "Results", fmt.Sprintf("%d", run.ResultsCount))
	addRow(sheet, "Location", run.Criteria.Location)
	addRow(sheet, "Division", run.Criteria.Division)
	addRow(sheet, "Created", run.CreatedAt.Format(time.RFC3339))
	for i, e := range run.Trace.Errors {
		addRow(sheet, fmt.Sprintf("Error %d", i+1), e)
	}
}

func writeStages(sheet *xlsx.Sheet, stages []model.StageResult) {
	addRow(sheet, "Stage", "Status", "Error", "Timestamp", "Details")
	for _, st := range stages {
		details := ""
		if len(st.Details) > 0 {
			if b, err := json.Marshal(st.Details); err == nil {
				details = string(b)
			}
		}
		addRow(sheet, st.Stage, string(st.Status), st.Error,
			st.Timestamp.Format(time.RFC3339), details)
	}
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
