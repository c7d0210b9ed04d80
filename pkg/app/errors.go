package app

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStartTimeout = errors.New("service start timeout expired")
	ErrStopTimeout  = errors.New("service stop timeout expired")
	ErrAlreadyRun   = errors.New("application has already been run")
)

// TimeoutError is returned when a service hook did not return within the
// configured timeout of its phase. errors.Is matches ErrStartTimeout or
// ErrStopTimeout depending on Phase.
type TimeoutError struct {
	Phase   Phase
	Timeout time.Duration
	Service string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout of %s expired for service %s", e.Phase, e.Timeout, e.Service)
}

func (e *TimeoutError) Is(target error) bool {
	switch target {
	case ErrStartTimeout:
		return e.Phase == PhaseStart
	case ErrStopTimeout:
		return e.Phase == PhaseStop
	}
	return false
}

// HookError wraps an error returned by a service hook.
type HookError struct {
	Phase   Phase
	Service string
	Err     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook of service %s failed: %v", e.Phase, e.Service, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
