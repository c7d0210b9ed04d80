package service

import (
	"context"
	"errors"
)

const (
	PayloadHosted     = "hosted"
	PayloadBackground = "background"
)

var (
	ErrAlreadyStarted = errors.New("service already started")
	ErrAlreadyStopped = errors.New("service already stopped")
	ErrNotStarted     = errors.New("service not started")
	ErrRegistryFrozen = errors.New("registry is frozen, services cannot be registered once the application runs")
)

// Service is a managed unit with start and stop hooks.
//
// The context passed to each hook expires when the orchestrator stops
// waiting for it. Hooks are expected to return eventually.
type Service interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
}

// Named is implemented by services that provide their own display name.
type Named interface {
	Name() string
}

// Func adapts a pair of functions into a Service. Nil functions are no-ops.
type Func struct {
	Start func(ctx context.Context) error
	Stop  func(ctx context.Context) error
}

func (f Func) OnStart(ctx context.Context) error {
	if f.Start == nil {
		return nil
	}
	return f.Start(ctx)
}

func (f Func) OnStop(ctx context.Context) error {
	if f.Stop == nil {
		return nil
	}
	return f.Stop(ctx)
}
