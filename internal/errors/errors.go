package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Input errors
	ErrorInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrorNoUsableContent    ErrorCode = "NO_USABLE_CONTENT"
	ErrorUnknownPersonality ErrorCode = "UNKNOWN_PERSONALITY"

	// Pipeline errors
	ErrorPreprocessing ErrorCode = "PREPROCESSING_FAILED"
	ErrorUpload        ErrorCode = "UPLOAD_FAILED"

	// Upstream errors
	ErrorGeneration ErrorCode = "GENERATION_FAILED"
	ErrorSynthesis  ErrorCode = "SYNTHESIS_FAILED"
)

// TutorError represents a structured error raised by the tutoring pipeline
type TutorError struct {
	Code      ErrorCode
	Message   string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *TutorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TutorError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the status sent to clients
func (e *TutorError) HTTPStatus() int {
	switch e.Code {
	case ErrorInvalidInput, ErrorUnknownPersonality, ErrorPreprocessing:
		return http.StatusBadRequest
	case ErrorNoUsableContent:
		return http.StatusUnprocessableEntity
	case ErrorSynthesis:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the underlying cause message, if any
func (e *TutorError) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

// Factory functions for common errors

func NewInvalidInputError(message string) *TutorError {
	return &TutorError{
		Code:      ErrorInvalidInput,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewUnknownPersonalityError(key string) *TutorError {
	return &TutorError{
		Code:      ErrorUnknownPersonality,
		Message:   fmt.Sprintf("unknown personality: %s", key),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"personality": key,
		},
	}
}

func NewNoUsableContentError(reasons []string) *TutorError {
	return &TutorError{
		Code:      ErrorNoUsableContent,
		Message:   "could not derive any usable content from the submitted canvas",
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"reasons": reasons,
		},
	}
}

func NewPreprocessingError(cause error) *TutorError {
	return &TutorError{
		Code:      ErrorPreprocessing,
		Message:   "image preprocessing failed",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewUploadError(host string, cause error) *TutorError {
	return &TutorError{
		Code:      ErrorUpload,
		Message:   fmt.Sprintf("image upload to %s failed", host),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"host": host,
		},
		Cause: cause,
	}
}

func NewGenerationError(provider string, cause error) *TutorError {
	return &TutorError{
		Code:      ErrorGeneration,
		Message:   "failed to generate response",
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"provider": provider,
		},
		Cause: cause,
	}
}

func NewSynthesisError(message string, cause error) *TutorError {
	return &TutorError{
		Code:      ErrorSynthesis,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// ToMap converts error to map for logging and responses
func (e *TutorError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
