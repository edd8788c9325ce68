// internal/workers/application/submit-application/validation.go
package submitapplication

import "farmchain-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "fullName", "address", "dateOfBirth", "cattleCommitted", "referralSource"},
		Properties: map[string]validation.Property{
			"leadId": {
				Type:        "string",
				Description: "Identifier of the qualified lead this application belongs to",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(64),
			},
			"fullName": {
				Type:        "string",
				Description: "Applicant's legal name",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"address": {
				Type:        "string",
				Description: "Residential address",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(500),
			},
			"dateOfBirth": {
				Type:        "string",
				Description: "Date of birth, YYYY-MM-DD",
				Pattern:     strPtr(`^\d{4}-\d{2}-\d{2}$`),
			},
			"employmentInfo": {
				Type:        "string",
				Description: "Employer and role, required on the Financing track",
				MaxLength:   intPtr(500),
			},
			"bvn": {
				Type:        "string",
				Description: "Bank verification number, required on the Financing track",
				Pattern:     strPtr(`^[0-9]{11}$|^$`),
			},
			"cattleCommitted": {
				Type:        "integer",
				Description: "Number of cattle units committed",
				Minimum:     floatPtr(1),
			},
			"expectations": {
				Type:        "string",
				Description: "Free-text expectations",
				MaxLength:   intPtr(2000),
			},
			"referralSource": {
				Type:        "string",
				Description: "How the applicant heard about the cooperative",
				Enum: []string{
					"social_media", "friend_family", "online_search",
					"advertisement", "event", "other",
				},
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

func floatPtr(f float64) *float64 {
	return &f
}
