package manager

import (
	"io"
	"os"

	"github.com/Phillezi/apphost/pkg/cancel"

	"github.com/go-logr/logr"
)

// Option defines a functional option for the managers in this package.
type Option func(*options)

type options struct {
	logger   logr.Logger
	signal   *cancel.Signal
	prompt   io.Writer
	onExit   func(code int)
	signalCh <-chan os.Signal
}

func newOptions(opts []Option) options {
	o := options{
		logger: logr.Discard(),
		onExit: os.Exit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.signal == nil {
		o.signal = cancel.New()
	}
	return o
}

// WithLogger sets a custom logger.
func WithLogger(l logr.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSignal shares an existing cancellation signal instead of creating one.
func WithSignal(s *cancel.Signal) Option {
	return func(o *options) {
		o.signal = s
	}
}

// WithPrompt prints a shutdown notice to w (os.Stderr by default) once the
// first OS signal is received. Stop called from code prints nothing.
func WithPrompt(enabled bool, w ...io.Writer) Option {
	return func(o *options) {
		o.prompt = nil
		if !enabled {
			return
		}
		o.prompt = os.Stderr
		for _, wr := range w {
			if wr != nil {
				o.prompt = wr
				return
			}
		}
	}
}

// WithOnExit sets the callback used to force exit on a repeated signal.
// Defaults to os.Exit.
func WithOnExit(f func(code int)) Option {
	return func(o *options) {
		if f != nil {
			o.onExit = f
		}
	}
}

// WithSignalChannel replaces SIGINT/SIGTERM delivery with ch. A value on ch
// counts as an OS signal and closing ch stops the manager.
func WithSignalChannel(ch <-chan os.Signal) Option {
	return func(o *options) {
		o.signalCh = ch
	}
}
