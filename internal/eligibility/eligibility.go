// Package eligibility implements the founding-membership admission rule.
//
// The rule is deliberately a pure function over applicant-submitted data:
// callers persist the outcome, this package never touches storage. Two rule
// variants exist because the admission policy changed after launch; both stay
// supported behind configuration so the policy can move again without code
// changes at the call sites.
package eligibility

import (
	"math"
	"strconv"
	"strings"

	"farmchain-workers/internal/models"
)

// RuleVariant selects which admission rule is active.
type RuleVariant string

const (
	// RuleIncomeOnly admits on annual income alone.
	RuleIncomeOnly RuleVariant = "income"
	// RuleIncomeAndContribution additionally requires financing-track
	// prospects to declare they can contribute to installments.
	RuleIncomeAndContribution RuleVariant = "income_financing"
)

// DefaultMinAnnualIncome is the launch threshold in whole naira.
const DefaultMinAnnualIncome = 1_500_000

// Reason codes attached to decisions, for logging and the rejection path.
const (
	ReasonQualified          = "qualified"
	ReasonIncomeInvalid      = "income_invalid"
	ReasonIncomeBelowMinimum = "income_below_minimum"
	ReasonContributionUnable = "contribution_unable"
)

// Rule is an admission policy. The zero value is not valid; use NewRule.
type Rule struct {
	Variant         RuleVariant
	MinAnnualIncome float64
}

// NewRule builds a Rule, falling back to the income-only variant and the
// default threshold when the configuration is blank or nonsensical.
func NewRule(variant string, minIncome float64) Rule {
	r := Rule{Variant: RuleVariant(variant), MinAnnualIncome: minIncome}
	if r.Variant != RuleIncomeOnly && r.Variant != RuleIncomeAndContribution {
		r.Variant = RuleIncomeOnly
	}
	if r.MinAnnualIncome <= 0 {
		r.MinAnnualIncome = DefaultMinAnnualIncome
	}
	return r
}

// Input is one applicant's self-reported financial data. AnnualIncome is the
// raw form value: user-controlled text that may not be a number at all.
type Input struct {
	FinanceTrack        models.FinanceTrack
	ContributionAbility models.ContributionAbility
	AnnualIncome        string
}

// Decision is the outcome of evaluating a Rule against an Input.
type Decision struct {
	Eligible bool
	// Income is the parsed annual income, 0 when parsing failed.
	Income float64
	// Reason explains the outcome with one of the Reason* codes.
	Reason string
}

// Status maps the decision onto the lead lifecycle's initial state.
func (d Decision) Status() models.LeadStatus {
	if d.Eligible {
		return models.LeadStatusPending
	}
	return models.LeadStatusIneligible
}

// ParseIncome coerces the raw income field to a number. Anything that is not
// a finite non-negative number reports ok=false; it never panics or errors,
// the field comes straight from an untrusted form.
func ParseIncome(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	income, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(income) || math.IsInf(income, 0) || income < 0 {
		return 0, false
	}
	return income, true
}

// Evaluate applies the rule. Total over any input: malformed income resolves
// to an ineligible decision, never a failure.
func (r Rule) Evaluate(in Input) Decision {
	income, ok := ParseIncome(in.AnnualIncome)
	if !ok {
		return Decision{Eligible: false, Reason: ReasonIncomeInvalid}
	}
	if income < r.MinAnnualIncome {
		return Decision{Eligible: false, Income: income, Reason: ReasonIncomeBelowMinimum}
	}
	if r.Variant == RuleIncomeAndContribution && in.FinanceTrack == models.FinanceTrackFinancing {
		if in.ContributionAbility != models.ContributionAble {
			return Decision{Eligible: false, Income: income, Reason: ReasonContributionUnable}
		}
	}
	return Decision{Eligible: true, Income: income, Reason: ReasonQualified}
}
