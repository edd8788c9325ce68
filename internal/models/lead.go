// internal/models/lead.go
package models

// FinanceTrack is the payment method a prospect selects on the eligibility test.
type FinanceTrack string

const (
	FinanceTrackPurchase  FinanceTrack = "Purchase"
	FinanceTrackFinancing FinanceTrack = "Financing"
)

// ContributionAbility is only collected when the finance track is Financing.
type ContributionAbility string

const (
	ContributionAble   ContributionAbility = "Able"
	ContributionUnable ContributionAbility = "Unable"
	ContributionUnset  ContributionAbility = ""
)

// LeadStatus is the lifecycle state of a qualified_leads row.
// Pending -> Submitted is the only legal transition; Ineligible and
// Submitted are terminal.
type LeadStatus string

const (
	LeadStatusPending    LeadStatus = "Pending"
	LeadStatusSubmitted  LeadStatus = "Submitted"
	LeadStatusIneligible LeadStatus = "Ineligible"
)

// Lead is a prospective member's eligibility-test submission.
type Lead struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Phone               string              `json:"phone"`
	FinanceTrack        FinanceTrack        `json:"financeTrack"`
	ContributionAbility ContributionAbility `json:"contributionAbility,omitempty"`
	AnnualIncome        float64             `json:"annualIncome"`
	WhyJoin             string              `json:"whyJoin"`
	ApplicationStatus   LeadStatus          `json:"applicationStatus"`
	CreatedAt           string              `json:"createdAt"` // ISO 8601
}
