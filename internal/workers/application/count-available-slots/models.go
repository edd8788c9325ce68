// internal/workers/application/count-available-slots/models.go
package countavailableslots

type Output struct {
	SlotCeiling        int    `json:"slotCeiling"`
	ApprovedCount      int    `json:"approvedCount"`
	PendingReviewCount int    `json:"pendingReviewCount"`
	DeclinedCount      int    `json:"declinedCount"`
	AvailableSlots     int    `json:"availableSlots"`
	CountedAt          string `json:"countedAt"` // ISO 8601
}
