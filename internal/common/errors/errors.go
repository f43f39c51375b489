// Package errors provides standardized error handling for the report client.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Transport and wire errors
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	ErrCodeHTTP      ErrorCode = "HTTP_ERROR"
	ErrCodeParse     ErrorCode = "PARSE_ERROR"

	// Client-side validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeStepIncomplete   ErrorCode = "STEP_INCOMPLETE"

	// Flow errors
	ErrCodeReportCreateFailed   ErrorCode = "REPORT_CREATE_FAILED"
	ErrCodeReportGenerateFailed ErrorCode = "REPORT_GENERATE_FAILED"
	ErrCodeUploadInProgress     ErrorCode = "UPLOAD_IN_PROGRESS"
	ErrCodeUploadFailed         ErrorCode = "UPLOAD_FAILED"
	ErrCodeConfirmationDeclined ErrorCode = "CONFIRMATION_DECLINED"
	ErrCodeNotAuthenticated     ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeTemplateNotLoaded    ErrorCode = "TEMPLATE_NOT_LOADED"
	ErrCodeTokenStore           ErrorCode = "TOKEN_STORE_ERROR"
)

// DefaultErrorMessage is shown when the server gives no usable message.
const DefaultErrorMessage = "Something went wrong"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// APIError is raised for every non-2xx response from the REST API.
type APIError struct {
	Status  int                    `json:"status"`
	Message string                 `json:"message"`
	Raw     map[string]interface{} `json:"raw,omitempty"`
	Body    []byte                 `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError[%d]: %s", e.Status, e.Message)
}

// NewAPIError builds an APIError from a decoded error body. The message is
// taken from "message", then "error", then the default text.
func NewAPIError(status int, raw map[string]interface{}, body []byte) *APIError {
	msg := DefaultErrorMessage
	if raw != nil {
		if m, ok := raw["message"].(string); ok && m != "" {
			msg = m
		} else if m, ok := raw["error"].(string); ok && m != "" {
			msg = m
		}
	}
	return &APIError{Status: status, Message: msg, Raw: raw, Body: body}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTransportError creates a retryable error for requests that got no response.
func NewTransportError(method, path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransport,
		Message:   "Network error, please try again",
		Details:   fmt.Sprintf("%s %s: %v", method, path, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewParseError creates a non-retryable error for malformed response bodies.
func NewParseError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParse,
		Message:   "Unexpected response from server",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewValidationError creates a non-retryable client-side validation error.
func NewValidationError(message string, fieldErrors map[string]string) *StandardError {
	var details []string
	for field, msg := range fieldErrors {
		details = append(details, fmt.Sprintf("%s: %s", field, msg))
	}
	meta := make(map[string]interface{}, len(fieldErrors))
	for k, v := range fieldErrors {
		meta[k] = v
	}
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Details:   strings.Join(details, "; "),
		Retryable: false,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepIncompleteError reports a wizard step whose gate is not satisfied.
func NewStepIncompleteError(step string, missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepIncomplete,
		Message:   fmt.Sprintf("Complete the %s step before continuing", step),
		Details:   "missing: " + strings.Join(missing, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"step": step},
		Timestamp: time.Now().UTC(),
	}
}

// NewReportCreateFailedError wraps a failed POST /reports.
func NewReportCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportCreateFailed,
		Message:   messageOr(err, "Failed to create report"),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewReportGenerateFailedError wraps a failed POST /reports/{id}/generate.
// The created report id is kept so the caller can point the user at it.
func NewReportGenerateFailedError(reportID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportGenerateFailed,
		Message:   messageOr(err, "Failed to generate report"),
		Details:   fmt.Sprintf("reportId: %s, error: %v", reportID, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"reportId": reportID},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewUploadInProgressError rejects a second upload batch while one is running.
func NewUploadInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadInProgress,
		Message:   "An upload is already in progress",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUploadFailedError wraps a failed POST /files/upload.
func NewUploadFailedError(filename string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   messageOr(err, "Failed to upload files"),
		Details:   fmt.Sprintf("file: %s, error: %v", filename, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"filename": filename},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewConfirmationDeclinedError is returned when a destructive action was not confirmed.
func NewConfirmationDeclinedError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfirmationDeclined,
		Message:   "Action cancelled",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotAuthenticatedError is returned by operations that need a session.
func NewNotAuthenticatedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Please sign in to continue",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotLoadedError is returned by editor operations before Load.
func NewTemplateNotLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotLoaded,
		Message:   "Template ID is required",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenStoreError wraps failures of the persistent token storage.
func NewTokenStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenStore,
		Message:   "Token storage error",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether the user can re-run the same action. Nothing in
// the client retries automatically.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == 429 || apiErr.Status == 408
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// CodeOf returns the error code of err. APIErrors map to HTTP_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return ErrCodeHTTP
	}
	return "INTERNAL_ERROR"
}

// UserMessage extracts the text shown to the user in a notification.
func UserMessage(err error) string {
	if err == nil {
		return DefaultErrorMessage
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Message
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) && stdErr.Message != "" {
		return stdErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unexpected error occurred"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case codeStr == string(ErrCodeTransport):
		return "NETWORK"
	case codeStr == string(ErrCodeHTTP):
		return "HTTP"
	case codeStr == string(ErrCodeParse):
		return "PARSE"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "STEP") || strings.Contains(codeStr, "CONFIRMATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REPORT") || strings.Contains(codeStr, "UPLOAD"):
		return "FLOW"
	case strings.Contains(codeStr, "TOKEN") || strings.Contains(codeStr, "AUTHENTICATED"):
		return "AUTH"
	default:
		return "OTHER"
	}
}

func messageOr(err error, fallback string) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) && stdErr.Message != "" {
		return stdErr.Message
	}
	return fallback
}
