// internal/models/application.go
package models

// AdminStatus is the review state of an application. Pending Review is the
// initial state; Approved and Declined are terminal.
type AdminStatus string

const (
	AdminStatusPendingReview AdminStatus = "Pending Review"
	AdminStatusApproved      AdminStatus = "Approved"
	AdminStatusDeclined      AdminStatus = "Declined"
)

// ReferralSource values accepted on the full application form.
const (
	ReferralSocialMedia   = "social_media"
	ReferralFriendFamily  = "friend_family"
	ReferralOnlineSearch  = "online_search"
	ReferralAdvertisement = "advertisement"
	ReferralEvent         = "event"
	ReferralOther         = "other"
)

// ValidReferralSources is the allowed set for the referralSource input field.
var ValidReferralSources = map[string]bool{
	ReferralSocialMedia:   true,
	ReferralFriendFamily:  true,
	ReferralOnlineSearch:  true,
	ReferralAdvertisement: true,
	ReferralEvent:         true,
	ReferralOther:         true,
}

// Application is a full membership application tied to exactly one Lead.
type Application struct {
	ID              string      `json:"id"`
	LeadID          string      `json:"leadId"`
	FullName        string      `json:"fullName"`
	Address         string      `json:"address"`
	DateOfBirth     string      `json:"dateOfBirth"`
	EmploymentInfo  string      `json:"employmentInfo,omitempty"`
	BVN             string      `json:"bvn,omitempty"`
	CattleCommitted int         `json:"cattleCommitted"`
	Expectations    string      `json:"expectations"`
	ReferralSource  string      `json:"referralSource"`
	AdminStatus     AdminStatus `json:"adminStatus"`
	AdminNotes      string      `json:"adminNotes,omitempty"`
	CreatedAt       string      `json:"createdAt"` // ISO 8601
	UpdatedAt       string      `json:"updatedAt"` // ISO 8601
}

// ApplicationWithLead is an application joined to its owning lead, as the
// admin dashboard lists it.
type ApplicationWithLead struct {
	Application
	Lead Lead `json:"lead"`
}
