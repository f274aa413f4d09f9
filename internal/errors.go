package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeContextRequired ErrorType = "CONTEXT_REQUIRED"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized    ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeRateLimited     ErrorType = "RATE_LIMITED"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"

	ErrCodeMissingToken       ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"

	ErrCodeTenantContextRequired ErrorCode = "TENANT_CONTEXT_REQUIRED"
	ErrCodeNotAMember            ErrorCode = "NOT_A_MEMBER"
	ErrCodePermissionDenied      ErrorCode = "PERMISSION_DENIED"
	ErrCodePlanLimitReached      ErrorCode = "PLAN_LIMIT_REACHED"
	ErrCodeRoleOutOfScope        ErrorCode = "ROLE_OUT_OF_SCOPE"
	ErrCodeRoleNotManageable     ErrorCode = "ROLE_NOT_MANAGEABLE"

	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeCompanyNotFound    ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeInvitationNotFound ErrorCode = "INVITATION_NOT_FOUND"
	ErrCodeInvitationExpired  ErrorCode = "INVITATION_EXPIRED"
	ErrCodeEmployeeNotFound   ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeTaskNotFound       ErrorCode = "TASK_NOT_FOUND"

	ErrCodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	ErrCodeMembershipExists   ErrorCode = "MEMBERSHIP_EXISTS"
	ErrCodeRoleNameExists     ErrorCode = "ROLE_NAME_EXISTS"
	ErrCodeRegistrationExists ErrorCode = "REGISTRATION_EXISTS"
	ErrCodeRoleInUse          ErrorCode = "ROLE_IN_USE"
	ErrCodeUniqueViolation    ErrorCode = "UNIQUE_VIOLATION"

	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that copies made by WithCause still satisfy
// errors.Is against the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewContextRequiredError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeContextRequired,
		Code:       ErrCodeTenantContextRequired,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewPermissionDeniedError(slug string) *AppError {
	return NewForbiddenError(fmt.Sprintf("Forbidden: requires permission '%s'", slug), ErrCodePermissionDenied)
}

func NewPlanLimitError(resource string, limit int64) *AppError {
	return NewForbiddenError(
		fmt.Sprintf("Plan limit reached. Max %s: %d. Upgrade required.", resource, limit),
		ErrCodePlanLimitReached,
	)
}

var (
	ErrMissingToken       = NewUnauthorizedError("No token provided", ErrCodeMissingToken)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token expired", ErrCodeTokenExpired)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrUnauthenticated    = NewUnauthorizedError("User not authenticated", ErrCodeUnauthenticated)
	ErrIdentityNotFound   = NewUnauthorizedError("User not found", ErrCodeUserNotFound)
	ErrUserInactive       = NewForbiddenError("User is inactive", ErrCodeUserInactive)

	// ErrNotAMember is returned for unknown, inactive and foreign tenants alike.
	ErrNotAMember      = NewForbiddenError("You are not a member of this company", ErrCodeNotAMember)
	ErrContextRequired = NewContextRequiredError("Company context required. Please provide the tenant header.")

	ErrTenantNotFound     = NewNotFoundError("Company not found", ErrCodeCompanyNotFound)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrInvitationNotFound = NewNotFoundError("Invalid invitation token", ErrCodeInvitationNotFound)
	ErrEmployeeNotFound   = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrTaskNotFound       = NewNotFoundError("Task not found", ErrCodeTaskNotFound)

	ErrInvitationExpired = NewValidationError("Invitation token expired", ErrCodeInvitationExpired)
	ErrRoleOutOfScope    = NewValidationError("Role is not valid for this company scope.", ErrCodeRoleOutOfScope)
	ErrRoleNotManageable = NewForbiddenError("Shared roles cannot be modified from a company context", ErrCodeRoleNotManageable)

	ErrEmailExists        = NewConflictError("Email already exists", ErrCodeEmailExists)
	ErrMembershipExists   = NewConflictError("User is already a member of this company", ErrCodeMembershipExists)
	ErrRoleNameExists     = NewConflictError("Role name already exists", ErrCodeRoleNameExists)
	ErrRegistrationExists = NewConflictError("Employee registration already exists", ErrCodeRegistrationExists)
	ErrUniqueViolation    = NewConflictError("Unique constraint violation", ErrCodeUniqueViolation)
	ErrRoleInUse          = NewConflictError("Role is assigned to members", ErrCodeRoleInUse)

	ErrRateLimited = NewRateLimitedError("rate limit exceeded")
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
