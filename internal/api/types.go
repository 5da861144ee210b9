package api

import (
	"fmt"
	"strings"
)

// Batch states reported by Livy
const (
	StateNotStarted   = "not_started"
	StateStarting     = "starting"
	StateIdle         = "idle"
	StateBusy         = "busy"
	StateShuttingDown = "shutting_down"
	StateError        = "error"
	StateDead         = "dead"
	StateKilled       = "killed"
	StateSuccess      = "success"
	StateRunning      = "running"
	StateRecovering   = "recovering"
)

// IsActiveState reports whether a batch in this state may still produce logs.
// Only starting and running count as active; everything else is terminal.
func IsActiveState(state string) bool {
	switch strings.ToLower(state) {
	case StateStarting, StateRunning:
		return true
	default:
		return false
	}
}

// Batch represents a Livy batch
type Batch struct {
	ID      int               `json:"id"`
	AppID   string            `json:"appId"`
	AppInfo map[string]string `json:"appInfo"`
	Log     []string          `json:"log"`
	State   string            `json:"state"`
}

// IsEnded reports whether the batch left the starting and running states
func (b *Batch) IsEnded() bool {
	return !IsActiveState(b.State)
}

// CreateBatchRequest is the payload of POST /batches
type CreateBatchRequest struct {
	File           string            `json:"file"`
	ProxyUser      string            `json:"proxyUser,omitempty"`
	ClassName      string            `json:"className,omitempty"`
	Args           []string          `json:"args,omitempty"`
	Jars           []string          `json:"jars,omitempty"`
	PyFiles        []string          `json:"pyFiles,omitempty"`
	Files          []string          `json:"files,omitempty"`
	DriverMemory   string            `json:"driverMemory,omitempty"`
	DriverCores    int               `json:"driverCores,omitempty"`
	ExecutorMemory string            `json:"executorMemory,omitempty"`
	ExecutorCores  int               `json:"executorCores,omitempty"`
	NumExecutors   int               `json:"numExecutors,omitempty"`
	Archives       []string          `json:"archives,omitempty"`
	Queue          string            `json:"queue,omitempty"`
	Name           string            `json:"name,omitempty"`
	Conf           map[string]string `json:"conf,omitempty"`
}

// Validate checks the fields Livy requires
func (r *CreateBatchRequest) Validate() error {
	if strings.TrimSpace(r.File) == "" {
		return fmt.Errorf("file is required")
	}
	for name, v := range map[string]int{
		"driverCores":   r.DriverCores,
		"executorCores": r.ExecutorCores,
		"numExecutors":  r.NumExecutors,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

type batchStateResponse struct {
	ID    int    `json:"id"`
	State string `json:"state"`
}

type batchLogResponse struct {
	ID    int      `json:"id"`
	From  int      `json:"from"`
	Total int      `json:"total"`
	Log   []string `json:"log"`
}

// ErrorResponse is the error body returned by Livy
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// RequestError reports a failed request to the Livy server. Code is the HTTP
// status, or 0 when no response was received.
type RequestError struct {
	Code   int
	Reason string
	Err    error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("request error: code %d (%s)", e.Code, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
