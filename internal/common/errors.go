package common

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/ocr-pdf/constants"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
	// Stage is the pipeline step that failed; empty for config errors.
	Stage constants.Stage
	// Stderr holds the tail of the failing external command's stderr, if any.
	Stderr string

	kind error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind so callers can write errors.Is(err, ErrRecognition).
func (e *AppError) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

// Error kinds
var (
	ErrInputNotFound = errors.New("input not found")
	ErrRasterization = errors.New("rasterization failed")
	ErrRecognition   = errors.New("recognition failed")
	ErrWrite         = errors.New("write failed")
	ErrInvalidInput  = errors.New("invalid input")
)

// Error codes
const (
	CodeInputNotFound = "INPUT_NOT_FOUND"
	CodeRasterization = "RASTERIZATION_ERROR"
	CodeRecognition   = "RECOGNITION_ERROR"
	CodeWrite         = "WRITE_ERROR"
	CodeConfig        = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
		kind:    kindForCode(code),
	}
}

func InputNotFoundError(path string, cause error) *AppError {
	e := NewAppError(CodeInputNotFound, fmt.Sprintf("PDF file '%s' not found", path), cause)
	e.Stage = constants.StageValidate
	return e
}

func RasterizationError(message string, cause error) *AppError {
	e := NewAppError(CodeRasterization, message, cause)
	e.Stage = constants.StageRasterize
	return e
}

func RecognitionError(message string, cause error) *AppError {
	e := NewAppError(CodeRecognition, message, cause)
	e.Stage = constants.StageRecognize
	return e
}

func WriteError(message string, cause error) *AppError {
	e := NewAppError(CodeWrite, message, cause)
	e.Stage = constants.StageWrite
	return e
}

// WithStderr attaches command stderr to the error and returns it.
func (e *AppError) WithStderr(stderr []byte) *AppError {
	e.Stderr = truncate(string(stderr), 2<<10)
	return e
}

// StageOf returns the pipeline stage recorded on err, or "" when err carries none.
func StageOf(err error) constants.Stage {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}

func kindForCode(code string) error {
	switch code {
	case CodeInputNotFound:
		return ErrInputNotFound
	case CodeRasterization:
		return ErrRasterization
	case CodeRecognition:
		return ErrRecognition
	case CodeWrite:
		return ErrWrite
	case CodeConfig:
		return ErrInvalidInput
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
