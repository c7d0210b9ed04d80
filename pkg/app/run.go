package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Phillezi/apphost/pkg/manager"
	"github.com/Phillezi/apphost/pkg/metrics"
	"github.com/Phillezi/apphost/pkg/service"
)

// Run applies the startup hooks, starts every service, blocks until the
// lifetime manager is stopped and then stops every service.
//
// Hooks of a phase run concurrently. Each one has its own deadline measured
// from the moment it is spawned, and the first hook in registration order
// that misses it fails the run with a *TimeoutError. Hooks that time out are
// not aborted. Cancelling ctx while running triggers the stop phase.
func (a *Application) Run(ctx context.Context) error {
	if !a.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	lifetime := a.Lifetime()
	defer a.closeLifetime()

	if err := a.applyStartups(); err != nil {
		a.setState(StateFailed)
		return err
	}

	a.registry.Freeze()
	handles := a.registry.Handles()
	a.logger.Info("services resolved", "count", len(handles))

	// hook deadlines must not collapse when ctx is cancelled
	base := context.WithoutCancel(ctx)

	a.setState(StateStarting)
	a.logger.Info("application starting")
	if err := a.runPhase(base, PhaseStart, a.timeouts().OnStartTimeout, handles); err != nil {
		a.setState(StateFailed)
		return err
	}
	a.setState(StateRunning)
	a.logger.Info("application started")

	a.waitForStop(ctx, lifetime)

	a.setState(StateStopping)
	a.logger.Info("application stopping")
	if err := a.runPhase(base, PhaseStop, a.timeouts().OnStopTimeout, handles); err != nil {
		a.setState(StateFailed)
		return err
	}

	if a.persist {
		a.logger.Info("storing core config", "path", a.config.Path())
		if err := a.config.Store(); err != nil {
			a.setState(StateFailed)
			return fmt.Errorf("store core config: %w", err)
		}
	}

	a.setState(StateStopped)
	a.logger.Info("application stopped")
	return nil
}

func (a *Application) applyStartups() error {
	for _, s := range a.startups {
		if err := s.Configure(a, a.config); err != nil {
			a.logger.Error(err, "startup failed", "startup", fmt.Sprintf("%T", s))
			return err
		}
	}
	if len(a.startups) > 0 {
		a.logger.Info("startups applied", "count", len(a.startups))
	}
	return nil
}

func (a *Application) waitForStop(ctx context.Context, lifetime manager.Manager) {
	select {
	case <-lifetime.Wait():
	case <-ctx.Done():
		a.logger.Info("context canceled externally")
		lifetime.Stop()
	}
}

var phaseLogs = map[Phase]struct{ begin, done string }{
	PhaseStart: {"starting service", "service started"},
	PhaseStop:  {"stopping service", "service stopped"},
}

type task struct {
	handle  *service.Handle
	ctx     context.Context
	done    chan struct{}
	err     error
	expired bool
}

func (a *Application) runPhase(base context.Context, phase Phase, timeout time.Duration, handles []*service.Handle) error {
	tasks := make([]*task, 0, len(handles))
	for _, h := range handles {
		a.logger.Info(phaseLogs[phase].begin, "service", h.Name(), "payload", h.Payload())
		tasks = append(tasks, a.spawn(base, phase, timeout, h))
	}

	for _, t := range tasks {
		if err := a.await(phase, timeout, t); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) spawn(base context.Context, phase Phase, timeout time.Duration, h *service.Handle) *task {
	ctx, cancel := context.WithTimeout(base, timeout)
	t := &task{handle: h, ctx: ctx, done: make(chan struct{})}

	go func() {
		// done is closed before cancel, see await
		defer cancel()
		defer close(t.done)

		began := time.Now()
		var err error
		if phase == PhaseStart {
			err = h.Start(ctx)
		} else {
			err = h.Stop(ctx)
		}
		t.err = err
		t.expired = errors.Is(ctx.Err(), context.DeadlineExceeded)

		if a.metrics != nil {
			outcome := metrics.OutcomeOK
			if err != nil {
				outcome = metrics.OutcomeError
			}
			a.metrics.RecordHook(string(phase), h.Name(), time.Since(began), outcome)
		}
	}()
	return t
}

// await prefers a finished hook over an elapsed deadline when both are ready.
func (a *Application) await(phase Phase, timeout time.Duration, t *task) error {
	select {
	case <-t.done:
	case <-t.ctx.Done():
		select {
		case <-t.done:
		default:
			return a.timedOut(phase, timeout, t.handle)
		}
	}

	if t.err != nil {
		if t.expired && errors.Is(t.err, context.DeadlineExceeded) {
			return a.timedOut(phase, timeout, t.handle)
		}
		err := &HookError{Phase: phase, Service: t.handle.Name(), Err: t.err}
		a.logger.Error(err, fmt.Sprintf("service %s failed", phase), "service", t.handle.Name())
		return err
	}

	a.logger.Info(phaseLogs[phase].done, "service", t.handle.Name())
	return nil
}

func (a *Application) timedOut(phase Phase, timeout time.Duration, h *service.Handle) error {
	err := &TimeoutError{Phase: phase, Timeout: timeout, Service: h.Name()}
	a.logger.Error(err, fmt.Sprintf("service %s timeout expired", phase), "service", h.Name(), "timeout", timeout)
	if a.metrics != nil {
		a.metrics.RecordTimeout(string(phase), h.Name())
	}
	return err
}
