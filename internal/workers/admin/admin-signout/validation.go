package adminsignout

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Session to close",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(128),
			},
			"refreshToken": {
				Type:        "string",
				Description: "When present, the refresh token is revoked at the identity provider too",
				MaxLength:   intPtr(4096),
			},
			"adminId": {
				Type:        "string",
				Description: "Identity of the admin signing out, for logging",
				MaxLength:   intPtr(64),
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
