// internal/workers/data-access/query-funnel/models.go
package queryfunnel

import "farmchain-workers/internal/models"

type Input struct {
	QueryType     string                 `json:"queryType"`
	LeadID        string                 `json:"leadId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Filters       map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeLeadsByStatus         = models.QueryTypeLeadsByStatus
	QueryTypeLeadByID              = models.QueryTypeLeadByID
	QueryTypeApplicationsForReview = models.QueryTypeApplicationsForReview
	QueryTypeApplicationByID       = models.QueryTypeApplicationByID
	QueryTypeFunnelSummary         = models.QueryTypeFunnelSummary
)
