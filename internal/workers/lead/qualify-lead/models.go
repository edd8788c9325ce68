// internal/workers/lead/qualify-lead/models.go
package qualifylead

// Input mirrors the eligibility-test form. AnnualIncome stays a string on
// purpose: the value is user-controlled free text and the rule, not the
// decoder, decides what a bad number means.
type Input struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	FinanceTrack        string `json:"financeTrack"`
	ContributionAbility string `json:"contributionAbility,omitempty"`
	AnnualIncome        string `json:"annualIncome"`
	WhyJoin             string `json:"whyJoin,omitempty"`
}

type Output struct {
	LeadID            string `json:"leadId"`
	Eligible          bool   `json:"eligible"`
	ApplicationStatus string `json:"applicationStatus"`
	Reason            string `json:"reason"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
