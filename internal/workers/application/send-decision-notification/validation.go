// internal/workers/application/send-decision-notification/validation.go
package senddecisionnotification

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId", "adminStatus", "fullName", "email"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:      "string",
				MinLength: intPtr(1),
				MaxLength: intPtr(64),
			},
			"adminStatus": {
				Type:        "string",
				Description: "The decision to announce",
				Enum:        []string{"Approved", "Declined"},
			},
			"fullName": {
				Type:      "string",
				MinLength: intPtr(1),
				MaxLength: intPtr(200),
			},
			"email": {
				Type:    "string",
				Pattern: strPtr(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
			},
			"phone": {
				Type:        "string",
				Description: "E.164 number for the SMS channel, when enabled",
				MaxLength:   intPtr(20),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
