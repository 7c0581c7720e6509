package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// gin 上下文中的键
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"
)

const RequestIDHeader = "X-Request-ID"
