package interrupt

import (
	"context"
	"os"

	"github.com/Phillezi/apphost/pkg/app"
	"github.com/Phillezi/apphost/pkg/manager"

	"github.com/go-logr/logr"
)

type InterruptConfig struct {
	baseContext context.Context
	logger      logr.Logger
	appOpts     []app.Option
	manOpts     []manager.Option
	onExit      func(code int)
}

type Option func(ic *InterruptConfig)

func WithBaseContext(ctx context.Context) Option {
	return func(ic *InterruptConfig) {
		ic.baseContext = ctx
	}
}

// WithLogger sets the logger of both the application and the signal manager.
func WithLogger(l logr.Logger) Option {
	return func(ic *InterruptConfig) {
		ic.logger = l
	}
}

func WithAppOpts(opts ...app.Option) Option {
	return func(ic *InterruptConfig) {
		ic.appOpts = opts
	}
}

func WithManagerOpts(opts ...manager.Option) Option {
	return func(ic *InterruptConfig) {
		ic.manOpts = opts
	}
}

// WithOnExit replaces os.Exit in Main.
func WithOnExit(f func(code int)) Option {
	return func(ic *InterruptConfig) {
		if f != nil {
			ic.onExit = f
		}
	}
}

func newConfig(opts []Option) InterruptConfig {
	ic := InterruptConfig{
		baseContext: context.Background(),
		logger:      logr.Discard(),
		onExit:      os.Exit,
	}
	for _, opt := range opts {
		opt(&ic)
	}
	return ic
}

// Run builds an application stopped by SIGINT/SIGTERM, lets setup register
// its services and runs it. It returns the process exit code: 0 after a clean
// stop and 1 otherwise.
func Run(setup func(a *app.Application) error, opts ...Option) int {
	ic := newConfig(opts)

	m := manager.NewSignal(append([]manager.Option{
		manager.WithLogger(ic.logger),
		manager.WithPrompt(true),
	}, ic.manOpts...)...)
	defer m.Close()

	appOpts := make([]app.Option, 0, len(ic.appOpts)+2)
	appOpts = append(appOpts, app.WithLogger(ic.logger))
	appOpts = append(appOpts, ic.appOpts...)
	a := app.New(append(appOpts, app.WithLifetime(m))...)

	if setup != nil {
		if err := setup(a); err != nil {
			ic.logger.Error(err, "application setup failed")
			return 1
		}
	}

	if err := a.Run(ic.baseContext); err != nil {
		ic.logger.Error(err, "application exited with error")
		return 1
	}
	return 0
}

// run in main on main thread
func Main(setup func(a *app.Application) error, opts ...Option) {
	assertMainGoroutine()

	ic := newConfig(opts)
	ic.onExit(Run(setup, opts...))
}
