package constants

const (
	// Session / context keys
	ContextKeyUserID  = "user_id"
	ContextKeyViewer  = "viewer"
	SessionCookieName = "crm_session"

	MinPasswordLength = 8
	// bcrypt input limit
	MaxPasswordLength = 72

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
