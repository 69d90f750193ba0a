package middleware

// Context keys used to store request and authentication metadata.
const (
	ContextKeySubject   = "auth_subject"
	ContextKeyEmail     = "auth_email"
	ContextKeyRole      = "auth_role"
	ContextKeyRequestID = "request_id"
)
