// internal/workers/data-access/query-funnel/queries/lead.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func LeadsByStatus(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	status, ok := params["status"].(string)
	if !ok || status == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, email, phone, finance_track, contribution_ability,
		       annual_income, application_status, created_at
		FROM qualified_leads
		WHERE application_status = $1
		ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, name, email, phone, financeTrack, contributionAbility string
		var annualIncome float64
		var applicationStatus, createdAt string
		err := rows.Scan(&id, &name, &email, &phone, &financeTrack, &contributionAbility,
			&annualIncome, &applicationStatus, &createdAt)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":                  id,
			"name":                name,
			"email":               email,
			"phone":               phone,
			"financeTrack":        financeTrack,
			"contributionAbility": contributionAbility,
			"annualIncome":        annualIncome,
			"applicationStatus":   applicationStatus,
			"createdAt":           createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func LeadByID(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	leadID, ok := params["leadId"].(string)
	if !ok || leadID == "" {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, email, phone, financeTrack, contributionAbility string
	var annualIncome float64
	var whyJoin, applicationStatus, createdAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, finance_track, contribution_ability,
		       annual_income, why_join, application_status, created_at
		FROM qualified_leads
		WHERE id = $1`, leadID).Scan(
		&id, &name, &email, &phone, &financeTrack, &contributionAbility,
		&annualIncome, &whyJoin, &applicationStatus, &createdAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                  id,
		"name":                name,
		"email":               email,
		"phone":               phone,
		"financeTrack":        financeTrack,
		"contributionAbility": contributionAbility,
		"annualIncome":        annualIncome,
		"whyJoin":             whyJoin,
		"applicationStatus":   applicationStatus,
		"createdAt":           createdAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
