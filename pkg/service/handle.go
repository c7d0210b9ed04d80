package service

import (
	"context"
	"fmt"
	"sync"
)

// Option configures a Handle.
type Option func(*Handle)

// WithName overrides the display name derived from the service.
func WithName(name string) Option {
	return func(h *Handle) {
		if name != "" {
			h.name = name
		}
	}
}

// WithPayload sets the category tag, "hosted" by default.
func WithPayload(payload string) Option {
	return func(h *Handle) {
		h.payload = payload
	}
}

// Handle wraps one service with its identity and an exclusive-access guard.
type Handle struct {
	name    string
	payload string

	mu      sync.RWMutex
	svc     Service
	started bool
	stopped bool
}

// NewHandle wraps svc. The name defaults to svc.Name() for Named services and
// to the dynamic type otherwise.
func NewHandle(svc Service, opts ...Option) *Handle {
	h := &Handle{
		name:    displayName(svc),
		payload: PayloadHosted,
		svc:     svc,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func displayName(svc Service) string {
	if n, ok := svc.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", svc)
}

func (h *Handle) Name() string    { return h.name }
func (h *Handle) Payload() string { return h.payload }

// String is "name (payload)", used in logs and errors.
func (h *Handle) String() string {
	if h.payload == "" {
		return h.name
	}
	return h.name + " (" + h.payload + ")"
}

// Start invokes the service's start hook under the write lock.
func (h *Handle) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return ErrAlreadyStarted
	}
	h.started = true
	return h.svc.OnStart(ctx)
}

// Stop invokes the service's stop hook under the write lock. It refuses to
// run before Start.
func (h *Handle) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return ErrNotStarted
	}
	if h.stopped {
		return ErrAlreadyStopped
	}
	h.stopped = true
	return h.svc.OnStop(ctx)
}

// Service returns the wrapped service. It blocks while a hook is running.
func (h *Handle) Service() Service {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.svc
}
