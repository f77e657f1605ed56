package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// class marks the per-code sentinels below; they match any error with the same code.
	class bool
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is lets errors.Is match a specific error by code and message, and a
// class sentinel such as ErrNotFound by code alone.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok || e.Code != t.Code {
		return false
	}
	return t.class || e.Message == t.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by every bounded context
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidState         = "INVALID_STATE"
	CodeValidation           = "VALIDATION_ERROR"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeUnavailable          = "UNAVAILABLE"
)

func classError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, class: true}
}

// Common domain errors
var (
	ErrNotFound             = classError(CodeNotFound, "Resource not found")
	ErrInvalidInput         = classError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState         = classError(CodeInvalidState, "Operation not allowed in current state")
	ErrValidation           = classError(CodeValidation, "Validation failed")
	ErrConfirmationRequired = classError(CodeConfirmationRequired, "Explicit confirmation is required")
	ErrUnavailable          = classError(CodeUnavailable, "Service unavailable")
)

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code string) bool {
	de, ok := AsDomainError(err)
	return ok && de.Code == code
}

// AsDomainError unwraps err into a *DomainError.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
