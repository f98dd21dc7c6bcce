package observability

import (
	"strings"
)

const (
	AttrRequestID     = "request.id"
	AttrQueryName     = "query.name"
	AttrQueryIndex    = "query.index"
	AttrBatchSize     = "batch.size"
	AttrErrno         = "query.errno"
	AttrErrorCode     = "query.error_code"
	AttrCallerSubject = "caller.subject"
	AttrConnectorType = "connector.type"
	AttrTraceID       = "trace_id"
	AttrSpanID        = "span_id"
)

var secretKeySubstrings = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"connection_string",
	"dsn",
}

// RedactAttributeValue masks values for known-sensitive attribute keys.
func RedactAttributeValue(key string, value string) string {
	lower := strings.ToLower(key)
	for _, needle := range secretKeySubstrings {
		if strings.Contains(lower, needle) {
			return "[REDACTED]"
		}
	}
	return value
}
