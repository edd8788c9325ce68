// internal/workers/lead/qualify-lead/validation.go
package qualifylead

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"name", "email", "phone", "financeTrack", "annualIncome"},
		Properties: map[string]validation.Property{
			"name": {
				Type:        "string",
				Description: "Prospect's full name",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"email": {
				Type:        "string",
				Description: "Contact email address",
				MinLength:   intPtr(3),
				MaxLength:   intPtr(320),
			},
			"phone": {
				Type:        "string",
				Description: "Contact phone number",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(30),
			},
			"financeTrack": {
				Type:        "string",
				Description: "Chosen payment method",
				Enum:        []string{"Purchase", "Financing"},
			},
			"contributionAbility": {
				Type:        "string",
				Description: "Installment contribution declaration, collected on the Financing track",
				Enum:        []string{"Able", "Unable", ""},
			},
			"annualIncome": {
				Type:        "string",
				Description: "Self-reported annual income as entered on the form",
				MaxLength:   intPtr(50),
			},
			"whyJoin": {
				Type:        "string",
				Description: "Free-text motivation",
				MaxLength:   intPtr(2000),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
