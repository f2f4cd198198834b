package session

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a session task.
type Status int32

const (
	// Running means the task is still pulling from its source.
	Running Status = iota
	// Finished means the source ended or failed. The last snapshot stays readable.
	Finished
	// Cancelled means the handle owner aborted the task.
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ConnectError reports that a session's upstream could not be established.
// No task is started and no tab is registered when it occurs.
type ConnectError struct {
	Target string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Target, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// IsConnectError reports whether err wraps a ConnectError.
func IsConnectError(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce)
}
