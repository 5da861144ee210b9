package ui

import "errors"

// ErrorType defines the category of error for proper handling
type ErrorType int

const (
	ErrorTypeUserCancelled ErrorType = iota // Ctrl+C, declined prompt
	ErrorTypeValidation                     // Bad flags or arguments
	ErrorTypeAPI                            // Livy server or network
	ErrorTypeFileSystem                     // Local files, log file, batch spec
	ErrorTypeConfiguration                  // Config file issues
	ErrorTypeInternal                       // Unexpected
)

// UIError carries how a command failure should be presented to the user.
type UIError struct {
	Err           error
	Type          ErrorType
	SuppressUsage bool // Don't show Cobra usage message
	SilentExit    bool // Don't print the error, it was already reported
}

func (e *UIError) Error() string {
	return e.Err.Error()
}

func (e *UIError) Unwrap() error {
	return e.Err
}

// AsUIError returns err as a *UIError, classifying unknown errors as internal.
func AsUIError(err error) *UIError {
	if err == nil {
		return nil
	}
	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}
	return NewInternalError(err)
}

func NewUserCancelledError() *UIError {
	return &UIError{
		Err:           errors.New("Keyboard interrupt"), //nolint:staticcheck // Shown as is
		Type:          ErrorTypeUserCancelled,
		SuppressUsage: true,
	}
}

func NewValidationError(err error) *UIError {
	return &UIError{
		Err:  err,
		Type: ErrorTypeValidation,
	}
}

func NewAPIError(err error) *UIError {
	return &UIError{
		Err:           err,
		Type:          ErrorTypeAPI,
		SuppressUsage: true,
	}
}

func NewFileSystemError(err error) *UIError {
	return &UIError{
		Err:           err,
		Type:          ErrorTypeFileSystem,
		SuppressUsage: true,
	}
}

func NewConfigurationError(err error) *UIError {
	return &UIError{
		Err:           err,
		Type:          ErrorTypeConfiguration,
		SuppressUsage: true,
	}
}

func NewInternalError(err error) *UIError {
	return &UIError{
		Err:           err,
		Type:          ErrorTypeInternal,
		SuppressUsage: true,
	}
}
