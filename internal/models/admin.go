package models

// AdminUserStatus gates an allow-list row without deleting it; suspended
// admins keep their audit history but cannot sign in.
type AdminUserStatus string

const (
	AdminUserStatusActive    AdminUserStatus = "active"
	AdminUserStatusSuspended AdminUserStatus = "suspended"
)

// AdminUser is an allow-list entry. A row whose id matches the identity
// provider subject is the sole authorization predicate; there are no roles.
type AdminUser struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Status      AdminUserStatus `json:"status"`
	CreatedAt   string          `json:"createdAt"`
	LastLogin   string          `json:"lastLogin,omitempty"`
}

// AdminSessionKey builds the Redis key that marks a session as live. Deleting
// the key revokes the session; admin-verify checks it on every navigation.
func AdminSessionKey(sessionID string) string {
	return "admin_session:" + sessionID
}
