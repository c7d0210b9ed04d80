package service

import (
	"context"
	"fmt"
	"sync"
)

// Worker is a unit of background work. Execute runs from the start phase
// until it returns or its context is cancelled by the stop phase.
type Worker interface {
	Execute(ctx context.Context)
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context)

func (f WorkerFunc) Execute(ctx context.Context) { f(ctx) }

type background struct {
	worker Worker

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Background adapts w into a Service. Register it with PayloadBackground.
func Background(w Worker) Service {
	return &background{worker: w}
}

// Name reports the worker's name so handles show the worker, not the adapter.
func (b *background) Name() string {
	if n, ok := b.worker.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", b.worker)
}

func (b *background) OnStart(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done != nil {
		return ErrAlreadyStarted
	}

	// the start context expires with the start phase, the worker outlives it
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		b.worker.Execute(ctx)
	}(b.done)
	return nil
}

func (b *background) OnStop(ctx context.Context) error {
	b.mu.Lock()
	done, cancel := b.done, b.cancel
	b.mu.Unlock()
	if done == nil {
		return ErrNotStarted
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
