package dto

// ErrorCode is the machine-readable error kind in an error body
type ErrorCode string

// Error codes returned by the API
const (
	ErrorCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeConflict        ErrorCode = "CONFLICT"
	ErrorCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrorCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Error   ErrorCode         `json:"error" example:"CONFLICT"`
	Message string            `json:"message" example:"Student is already enrolled to this course."`
	Fields  map[string]string `json:"fields,omitempty"`
}

// NewErrorResponse creates an error body
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Error: code, Message: message}
}

// WithFields attaches per-field validation messages
func (e *ErrorResponse) WithFields(fields map[string]string) *ErrorResponse {
	if len(fields) > 0 {
		e.Fields = fields
	}
	return e
}
