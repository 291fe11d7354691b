package constants

const (
	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Users
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6

	// Tasks
	MaxTaskDescriptionLength = 1000

	// Statistics
	MaxStatisticsRangeDays = 366

	// Context keys
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)
