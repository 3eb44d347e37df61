package model

import "time"

// Listing is a government layout-approval record, pre-pricing. Immutable
// once produced by an inventory source.
type Listing struct {
	ProjectName      string    `json:"project_name"`
	ApprovalNumber   string    `json:"approval_number"`
	ApprovalDate     time.Time `json:"approval_date"`
	ApprovedArea     float64   `json:"approved_area"` // acres
	Location         string    `json:"location"`
	Division         string    `json:"division"`
	Authority        string    `json:"authority"`
	DeveloperContact string    `json:"developer_contact,omitempty"`
}
