package types

// ApiResponse is the common response envelope. Exactly one of Data or Error
// is populated.
type ApiResponse struct {
	Data  interface{} `json:"data"`
	Error *ApiError   `json:"error,omitempty"`
}

// ApiError carries a stable machine-readable code alongside the human message.
type ApiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Stable API error codes.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidSchedule = "INVALID_SCHEDULE"
	ErrCodeNotFound        = "RESOURCE_NOT_FOUND"
	ErrCodeAuthRequired    = "AUTHENTICATION_REQUIRED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// DataResponse wraps a successful payload in the envelope.
func DataResponse(data interface{}) ApiResponse {
	return ApiResponse{Data: data}
}

// ErrorResponse builds an error envelope with the given code and message.
func ErrorResponse(code, message string) ApiResponse {
	return ApiResponse{Error: &ApiError{Code: code, Message: message}}
}

// ErrorResponseWithDetails builds an error envelope including details.
func ErrorResponseWithDetails(code, message string, details interface{}) ApiResponse {
	return ApiResponse{Error: &ApiError{Code: code, Message: message, Details: details}}
}
