// internal/workers/application/send-decision-notification/models.go
package senddecisionnotification

type Input struct {
	ApplicationID string `json:"applicationId"`
	AdminStatus   string `json:"adminStatus"` // Approved | Declined
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	EmailSent     bool   `json:"emailSent"`
	SMSSent       bool   `json:"smsSent"`
	SentAt        string `json:"sentAt"` // ISO 8601
}
