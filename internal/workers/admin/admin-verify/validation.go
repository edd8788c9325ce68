package adminverify

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"accessToken"},
		Properties: map[string]validation.Property{
			"accessToken": {
				Type:        "string",
				Description: "Bearer token presented by the admin console",
				MinLength:   intPtr(10),
				MaxLength:   intPtr(4096),
			},
			"sessionId": {
				Type:        "string",
				Description: "Session identifier; defaults to the token's session claim",
				MaxLength:   intPtr(128),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
