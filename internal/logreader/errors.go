package logreader

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkerExists is returned when a background worker is started twice on one reader.
	ErrWorkerExists = errors.New("background worker is already created")

	// ErrNoWorker is returned when the background worker is stopped or awaited before it was started.
	ErrNoWorker = errors.New("background worker not found, call ReadUntilFinish with block=false first")
)

// ArgumentError reports an invalid argument passed to the reader or its registry.
type ArgumentError struct {
	Name   string
	Expect string
	Got    any
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("expect %s for %s, got %T", e.Expect, e.Name, e.Got)
}

// OperationError reports misuse of the reader's background worker.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
