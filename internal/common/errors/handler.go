// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"time"
)

// Logger is the subset of the logging interface the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ErrorHandler applies the user-facing error policy: every failure is logged
// and surfaced as a transient notification, never treated as fatal.
type ErrorHandler struct {
	logger   Logger
	notifier Notifier
}

func NewErrorHandler(logger Logger, notifier Notifier) *ErrorHandler {
	return &ErrorHandler{logger: logger, notifier: notifier}
}

// Handle logs err for operation op, notifies the user and returns err unchanged
// so callers can `return h.Handle("login", err)`.
func (h *ErrorHandler) Handle(op string, err error) error {
	if err == nil {
		return nil
	}
	stdErr := Normalize(err)

	fields := map[string]interface{}{
		"operation":     op,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     IsRetryable(err),
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status := StatusCode(err); status != 0 {
		fields["status"] = status
	}

	if stdErr.Code == ErrCodeValidationFailed || stdErr.Code == ErrCodeStepIncomplete {
		h.logger.Warn("operation blocked by validation", fields)
	} else {
		h.logger.Error("operation failed", fields)
	}

	if h.notifier != nil && stdErr.Code != ErrCodeConfirmationDeclined {
		h.notifier.Error(UserMessage(err))
	}
	return err
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return &StandardError{
			Code:      ErrCodeHTTP,
			Message:   apiErr.Message,
			Details:   string(apiErr.Body),
			Retryable: IsRetryable(apiErr),
			Metadata:  map[string]interface{}{"status": apiErr.Status},
			Timestamp: time.Now().UTC(),
			Cause:     err,
		}
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}
