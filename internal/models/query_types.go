// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeLeadsByStatus         QueryType = "leads_by_status"
	QueryTypeLeadByID              QueryType = "lead_by_id"
	QueryTypeApplicationsForReview QueryType = "applications_for_review"
	QueryTypeApplicationByID       QueryType = "application_by_id"
	QueryTypeFunnelSummary         QueryType = "funnel_summary"
)
