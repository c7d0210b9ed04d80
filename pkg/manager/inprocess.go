package manager

import (
	"context"

	"github.com/Phillezi/apphost/pkg/cancel"

	"github.com/go-logr/logr"
)

// InProcess is a Manager that is only stopped by calling Stop, which makes it
// suitable for embedding and tests.
type InProcess struct {
	signal *cancel.Signal
	logger logr.Logger
}

func NewInProcess(opts ...Option) *InProcess {
	o := newOptions(opts)
	return &InProcess{
		signal: o.signal,
		logger: o.logger.WithName("manager"),
	}
}

func (m *InProcess) Stop() {
	if m.signal.Fired() {
		return
	}
	m.logger.V(1).Info("stop requested")
	m.signal.Fire()
}

func (m *InProcess) Running() bool            { return !m.signal.Fired() }
func (m *InProcess) Wait() <-chan struct{}    { return m.signal.Wait() }
func (m *InProcess) Context() context.Context { return m.signal.Context() }
