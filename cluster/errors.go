package cluster

import (
	"errors"
	"fmt"
	"time"
)

// ErrTerminated is returned when operating on a handle that has already been terminated.
var ErrTerminated = errors.New("cluster already terminated")

// ConfigurationError is a problem with the cluster configuration, detected before any remote call.
// Err, if set, is the underlying cause.
type ConfigurationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cluster configuration: %s", e.Msg)
	}
	return fmt.Sprintf("invalid cluster configuration: %s: %s", e.Field, e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LaunchFailedError is returned when the service rejects a cluster creation request.
type LaunchFailedError struct {
	Name string
	Err  error
}

func (e *LaunchFailedError) Error() string {
	return fmt.Sprintf("launching cluster %q: %s", e.Name, e.Err)
}

func (e *LaunchFailedError) Unwrap() error { return e.Err }

// TimeoutError is returned when a cluster doesn't become ready in time.
// The cluster is left running; the caller decides whether to terminate it.
type TimeoutError struct {
	ID        string
	LastState State
	Elapsed   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for cluster %s to be ready, last state %s", e.Elapsed, e.ID, e.LastState)
}

// UnexpectedStateError is returned when a cluster being waited on reaches a state it can't become ready from.
type UnexpectedStateError struct {
	ID    string
	State State
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("cluster %s reached state %s while waiting to be ready", e.ID, e.State)
}

// TerminationFailedError records a failed terminate call for one cluster.
type TerminationFailedError struct {
	ID  string
	Err error
}

func (e *TerminationFailedError) Error() string {
	return fmt.Sprintf("terminating cluster %s: %s", e.ID, e.Err)
}

func (e *TerminationFailedError) Unwrap() error { return e.Err }
