package adminsignin

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "password"},
		Properties: map[string]validation.Property{
			"email": {
				Type:        "string",
				Description: "Administrator email address",
				Pattern:     strPtr(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
				MaxLength:   intPtr(254),
			},
			"password": {
				Type:        "string",
				Description: "Administrator password, verified against the identity provider",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
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
