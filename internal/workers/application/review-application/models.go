// internal/workers/application/review-application/models.go
package reviewapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	Decision      string `json:"decision"` // Approved | Declined
	AdminNotes    string `json:"adminNotes,omitempty"`
	ReviewerID    string `json:"reviewerId,omitempty"`
}

type Output struct {
	ApplicationID  string `json:"applicationId"`
	AdminStatus    string `json:"adminStatus"`
	ApprovedCount  int    `json:"approvedCount"`
	AvailableSlots int    `json:"availableSlots"`
	UpdatedAt      string `json:"updatedAt"` // ISO 8601
}
