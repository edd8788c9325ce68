package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"farmchain-workers/internal/models"
)

// ==========================
// Income parsing
// ==========================

func TestParseIncome(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"plain integer", "2000000", 2000000, true},
		{"decimal", "1500000.50", 1500000.50, true},
		{"zero", "0", 0, true},
		{"leading whitespace", "  1750000", 1750000, true},
		{"scientific notation", "1.5e6", 1500000, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"letters", "two million", 0, false},
		{"currency symbol", "₦2,000,000", 0, false},
		{"thousand separators", "1,500,000", 0, false},
		{"negative", "-1", 0, false},
		{"nan", "NaN", 0, false},
		{"positive infinity", "Inf", 0, false},
		{"negative infinity", "-Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIncome(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Rule A: income only
// ==========================

func TestRuleIncomeOnly(t *testing.T) {
	rule := NewRule("income", 1_500_000)

	tests := []struct {
		name         string
		input        Input
		wantEligible bool
		wantReason   string
	}{
		{
			name:         "income above threshold",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "2000000"},
			wantEligible: true,
			wantReason:   ReasonQualified,
		},
		{
			name:         "income exactly at threshold",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "1500000"},
			wantEligible: true,
			wantReason:   ReasonQualified,
		},
		{
			name:         "income one below threshold",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "1499999"},
			wantEligible: false,
			wantReason:   ReasonIncomeBelowMinimum,
		},
		{
			name:         "income far below threshold",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "1000000"},
			wantEligible: false,
			wantReason:   ReasonIncomeBelowMinimum,
		},
		{
			name:         "non-numeric income",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "a lot"},
			wantEligible: false,
			wantReason:   ReasonIncomeInvalid,
		},
		{
			name:         "absent income",
			input:        Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: ""},
			wantEligible: false,
			wantReason:   ReasonIncomeInvalid,
		},
		{
			name: "financing track ignores contribution under rule A",
			input: Input{
				FinanceTrack:        models.FinanceTrackFinancing,
				ContributionAbility: models.ContributionUnable,
				AnnualIncome:        "2000000",
			},
			wantEligible: true,
			wantReason:   ReasonQualified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rule.Evaluate(tt.input)
			assert.Equal(t, tt.wantEligible, d.Eligible)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

// ==========================
// Rule B: income + financing gate
// ==========================

func TestRuleIncomeAndContribution(t *testing.T) {
	rule := NewRule("income_financing", 1_500_000)

	tests := []struct {
		name         string
		track        models.FinanceTrack
		contribution models.ContributionAbility
		income       string
		wantEligible bool
		wantReason   string
	}{
		{"purchase, sufficient income", models.FinanceTrackPurchase, models.ContributionUnset, "2000000", true, ReasonQualified},
		{"purchase, insufficient income", models.FinanceTrackPurchase, models.ContributionUnset, "1000000", false, ReasonIncomeBelowMinimum},
		{"financing, able, sufficient income", models.FinanceTrackFinancing, models.ContributionAble, "2000000", true, ReasonQualified},
		{"financing, unable, sufficient income", models.FinanceTrackFinancing, models.ContributionUnable, "2000000", false, ReasonContributionUnable},
		{"financing, unset contribution, sufficient income", models.FinanceTrackFinancing, models.ContributionUnset, "2000000", false, ReasonContributionUnable},
		{"financing, able, insufficient income", models.FinanceTrackFinancing, models.ContributionAble, "1400000", false, ReasonIncomeBelowMinimum},
		{"financing, unable, insufficient income", models.FinanceTrackFinancing, models.ContributionUnable, "1400000", false, ReasonIncomeBelowMinimum},
		{"financing, able, invalid income", models.FinanceTrackFinancing, models.ContributionAble, "abc", false, ReasonIncomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := rule.Evaluate(Input{
				FinanceTrack:        tt.track,
				ContributionAbility: tt.contribution,
				AnnualIncome:        tt.income,
			})
			assert.Equal(t, tt.wantEligible, d.Eligible)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

// ==========================
// Decision/status mapping and rule construction
// ==========================

func TestDecisionStatus(t *testing.T) {
	assert.Equal(t, models.LeadStatusPending, Decision{Eligible: true}.Status())
	assert.Equal(t, models.LeadStatusIneligible, Decision{Eligible: false}.Status())
}

func TestNewRuleDefaults(t *testing.T) {
	r := NewRule("", 0)
	assert.Equal(t, RuleIncomeOnly, r.Variant)
	assert.Equal(t, float64(DefaultMinAnnualIncome), r.MinAnnualIncome)

	r = NewRule("nonsense", -5)
	assert.Equal(t, RuleIncomeOnly, r.Variant)
	assert.Equal(t, float64(DefaultMinAnnualIncome), r.MinAnnualIncome)

	r = NewRule("income_financing", 2_000_000)
	assert.Equal(t, RuleIncomeAndContribution, r.Variant)
	assert.Equal(t, float64(2_000_000), r.MinAnnualIncome)
}

func TestEvaluateParsedIncomeCarried(t *testing.T) {
	rule := NewRule("income", 1_500_000)
	d := rule.Evaluate(Input{FinanceTrack: models.FinanceTrackPurchase, AnnualIncome: "1750000.25"})
	assert.True(t, d.Eligible)
	assert.Equal(t, 1750000.25, d.Income)
}
