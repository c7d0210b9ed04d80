package manager

import "context"

// Manager is the stop source of an application. Anything holding it can end
// the run, and the orchestrator blocks on Wait between the start and stop
// phases.
type Manager interface {
	// Stop requests shutdown. Calls after the first are no-ops.
	Stop()

	// Running reports whether Stop has not been requested yet.
	Running() bool

	// Wait returns a channel that is closed once Stop has been requested.
	// Channels obtained after Stop are already closed.
	Wait() <-chan struct{}

	// Context returns a context that is cancelled when shutdown begins.
	Context() context.Context
}

// WaitForStop blocks until m is stopped or ctx is done.
func WaitForStop(ctx context.Context, m Manager) error {
	select {
	case <-m.Wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
