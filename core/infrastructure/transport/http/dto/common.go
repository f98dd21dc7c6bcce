package dto

// CodeUnauthorized is the error code of a rejected bearer token
const CodeUnauthorized = "ERROR_UNAUTHORIZED"

// HealthResponse represents a health check response
type HealthResponse struct {
	Success bool `json:"success"`
}

// ErrorDetail is the error object of a transport-level failure
type ErrorDetail struct {
	Code string `json:"code"`
}

// ErrorResponse represents a failure produced before the query service runs
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// UnauthorizedResponse is the body of a 401
func UnauthorizedResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: CodeUnauthorized}}
}
