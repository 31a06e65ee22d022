package logging

import "fmt"

// OperationError annotates an error with the operation that produced it.
type OperationError struct {
	Operation string
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("%s (%s): %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError wraps err with the operation name and the path it concerns.
// It returns nil when err is nil.
func NewOperationError(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, Path: path, Err: err}
}
