// internal/workers/application/review-application/validation.go
package reviewapplication

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "decision"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:        "string",
				Description: "Identifier of the application under review",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(64),
			},
			"decision": {
				Type:        "string",
				Description: "Review outcome",
				Enum:        []string{"Approved", "Declined"},
			},
			"adminNotes": {
				Type:        "string",
				Description: "Free-text reviewer notes, stored verbatim",
				MaxLength:   intPtr(2000),
			},
			"reviewerId": {
				Type:        "string",
				Description: "Identity of the deciding administrator, for logging",
				MaxLength:   intPtr(64),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
