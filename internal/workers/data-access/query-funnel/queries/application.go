// internal/workers/data-access/query-funnel/queries/application.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

// ApplicationsForReview lists the review queue joined with the lead that
// produced each application, oldest first so reviewers work in arrival order.
func ApplicationsForReview(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.lead_id, a.full_name, a.cattle_committed, a.referral_source,
		       a.admin_status, a.created_at,
		       l.email, l.phone, l.finance_track, l.annual_income
		FROM applications a
		JOIN qualified_leads l ON l.id = a.lead_id
		WHERE a.admin_status = 'Pending Review'
		ORDER BY a.created_at ASC`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, leadID, fullName string
		var cattleCommitted int
		var referralSource, adminStatus, createdAt string
		var email, phone, financeTrack string
		var annualIncome float64
		err := rows.Scan(&id, &leadID, &fullName, &cattleCommitted, &referralSource,
			&adminStatus, &createdAt, &email, &phone, &financeTrack, &annualIncome)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":              id,
			"leadId":          leadID,
			"fullName":        fullName,
			"cattleCommitted": cattleCommitted,
			"referralSource":  referralSource,
			"adminStatus":     adminStatus,
			"createdAt":       createdAt,
			"email":           email,
			"phone":           phone,
			"financeTrack":    financeTrack,
			"annualIncome":    annualIncome,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func ApplicationByID(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	applicationID, ok := params["applicationId"].(string)
	if !ok || applicationID == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, leadID, fullName, address, dateOfBirth, employmentInfo, bvn string
	var cattleCommitted int
	var expectations, referralSource, adminStatus, adminNotes, createdAt, updatedAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, lead_id, full_name, address, date_of_birth, employment_info,
		       bvn, cattle_committed, expectations, referral_source,
		       admin_status, admin_notes, created_at, updated_at
		FROM applications
		WHERE id = $1`, applicationID).Scan(
		&id, &leadID, &fullName, &address, &dateOfBirth, &employmentInfo,
		&bvn, &cattleCommitted, &expectations, &referralSource,
		&adminStatus, &adminNotes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":              id,
		"leadId":          leadID,
		"fullName":        fullName,
		"address":         address,
		"dateOfBirth":     dateOfBirth,
		"employmentInfo":  employmentInfo,
		"bvn":             bvn,
		"cattleCommitted": cattleCommitted,
		"expectations":    expectations,
		"referralSource":  referralSource,
		"adminStatus":     adminStatus,
		"adminNotes":      adminNotes,
		"createdAt":       createdAt,
		"updatedAt":       updatedAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

// FunnelSummary aggregates both funnel stages into one dashboard row.
func FunnelSummary(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	var pendingLeads, submittedLeads, ineligibleLeads int
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE application_status = 'Pending'),
			COUNT(*) FILTER (WHERE application_status = 'Submitted'),
			COUNT(*) FILTER (WHERE application_status = 'Ineligible')
		FROM qualified_leads`).Scan(&pendingLeads, &submittedLeads, &ineligibleLeads)
	if err != nil {
		return nil, 0, 0, err
	}

	var pendingReview, approved, declined int
	err = db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE admin_status = 'Pending Review'),
			COUNT(*) FILTER (WHERE admin_status = 'Approved'),
			COUNT(*) FILTER (WHERE admin_status = 'Declined')
		FROM applications`).Scan(&pendingReview, &approved, &declined)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"pendingLeads":    pendingLeads,
		"submittedLeads":  submittedLeads,
		"ineligibleLeads": ineligibleLeads,
		"pendingReview":   pendingReview,
		"approved":        approved,
		"declined":        declined,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
