// internal/workers/application/submit-application/models.go
package submitapplication

type Input struct {
	LeadID          string `json:"leadId"`
	FullName        string `json:"fullName"`
	Address         string `json:"address"`
	DateOfBirth     string `json:"dateOfBirth"`
	EmploymentInfo  string `json:"employmentInfo,omitempty"`
	BVN             string `json:"bvn,omitempty"`
	CattleCommitted int    `json:"cattleCommitted"`
	Expectations    string `json:"expectations,omitempty"`
	ReferralSource  string `json:"referralSource"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	AdminStatus   string `json:"adminStatus"`
	LeadStatus    string `json:"leadStatus"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}
