package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Monitoring
	FieldStudentID    = "student_id"
	FieldFlagType     = "flag_type"
	FieldDomain       = "domain"
	FieldSubscriberID = "subscriber_id"
	FieldEventType    = "event_type"
	FieldTransport    = "transport"

	// Service
	FieldService = "service"
	FieldEnv     = "env"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
