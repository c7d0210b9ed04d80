package manager

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Phillezi/apphost/pkg/cancel"

	"github.com/go-logr/logr"
)

// Signal is a Manager driven by SIGINT/SIGTERM. The first signal stops the
// application, a second one forces exit with code 1.
type Signal struct {
	signal *cancel.Signal
	logger logr.Logger
	prompt io.Writer
	onExit func(code int)

	sigCh     <-chan os.Signal
	osCh      chan os.Signal
	quit      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// NewSignal starts listening immediately. Call Close to release the OS
// notification.
func NewSignal(opts ...Option) *Signal {
	o := newOptions(opts)
	m := &Signal{
		signal: o.signal,
		logger: o.logger.WithName("manager"),
		prompt: o.prompt,
		onExit: o.onExit,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if o.signalCh != nil {
		// Use provided channel (mocked for tests)
		m.sigCh = o.signalCh
	} else {
		// Default: register OS signals
		m.osCh = make(chan os.Signal, 2)
		signal.Notify(m.osCh, syscall.SIGINT, syscall.SIGTERM)
		m.sigCh = m.osCh
	}

	go m.listen()
	return m
}

func (m *Signal) listen() {
	defer close(m.done)

	select {
	case sig, ok := <-m.sigCh:
		if !ok {
			m.logger.Info("signal channel closed")
			m.Stop()
			return
		}
		m.shutdownRequested(sig)
	case <-m.signal.Wait():
		m.logger.V(1).Info("stopped programmatically")
		// the next signal is still the first one the user sent
		select {
		case sig, ok := <-m.sigCh:
			if !ok {
				return
			}
			m.shutdownRequested(sig)
		case <-m.quit:
			return
		}
	case <-m.quit:
		return
	}

	select {
	case sig, ok := <-m.sigCh:
		if !ok {
			return
		}
		m.logger.Info("received second shutdown signal, forcing exit", "signal", sig)
		m.onExit(1)
	case <-m.quit:
	}
}

func (m *Signal) shutdownRequested(sig os.Signal) {
	m.logger.Info("received shutdown signal", "signal", sig)
	m.Stop()
	if m.prompt != nil {
		gracefulShutdownPrompt(m.prompt)
	}
}

func (m *Signal) Stop()                    { m.signal.Fire() }
func (m *Signal) Running() bool            { return !m.signal.Fired() }
func (m *Signal) Wait() <-chan struct{}    { return m.signal.Wait() }
func (m *Signal) Context() context.Context { return m.signal.Context() }

// Close stops listening. It does not stop the application.
func (m *Signal) Close() error {
	m.closeOnce.Do(func() {
		if m.osCh != nil {
			signal.Stop(m.osCh)
		}
		close(m.quit)
	})
	<-m.done
	return nil
}
