package app

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Phillezi/apphost/pkg/config"
	"github.com/Phillezi/apphost/pkg/manager"
	"github.com/Phillezi/apphost/pkg/metrics"
	"github.com/Phillezi/apphost/pkg/service"

	"github.com/go-logr/logr"
)

// Option defines a functional option for Application.
type Option func(*Application)

// Application owns a service registry and drives it through one
// start, wait, stop cycle.
type Application struct {
	logger   logr.Logger
	registry *service.Registry
	metrics  metrics.LifecycleMetrics
	startups []Startup

	config   *config.Snapshot
	persist  bool
	override *config.CoreConfig

	mu           sync.Mutex
	lifetime     manager.Manager
	ownsLifetime bool

	state atomic.Int32
	ran   atomic.Bool
}

// New creates an application. Without WithConfig the default timeouts apply
// and nothing is persisted.
func New(opts ...Option) *Application {
	a := &Application{
		logger:   logr.Discard(),
		registry: service.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		a.config = config.NewSnapshot("", config.Default())
	}
	a.logger = a.logger.WithName("app")
	return a
}

// WithLogger sets a custom logger.
func WithLogger(l logr.Logger) Option {
	return func(a *Application) {
		a.logger = l
	}
}

// WithConfig sources the timeouts from s and stores s after a successful stop.
func WithConfig(s *config.Snapshot) Option {
	return func(a *Application) {
		a.config = s
		a.persist = s != nil
	}
}

// WithTimeouts overrides the configured timeouts without touching the
// configuration file.
func WithTimeouts(start, stop time.Duration) Option {
	return func(a *Application) {
		a.override = &config.CoreConfig{OnStartTimeout: start, OnStopTimeout: stop}
	}
}

// WithLifetime sets the stop source. Defaults to a manager.Signal created on
// first use.
func WithLifetime(m manager.Manager) Option {
	return func(a *Application) {
		a.lifetime = m
	}
}

// WithMetrics enables lifecycle metrics.
func WithMetrics(m metrics.LifecycleMetrics) Option {
	return func(a *Application) {
		a.metrics = m
	}
}

// WithStartup adds a startup hook. Hooks run in the order they were added.
func WithStartup(s Startup) Option {
	return func(a *Application) {
		a.startups = append(a.startups, s)
	}
}

// Register adds a hosted service. It fails once Run has started.
func (a *Application) Register(svc service.Service, opts ...service.Option) error {
	h, err := a.registry.Register(svc, opts...)
	if err != nil {
		return err
	}
	a.logger.Info("service registered", "service", h.Name(), "payload", h.Payload())
	return nil
}

// RegisterBackground adds a worker that runs between the start and stop phases.
func (a *Application) RegisterBackground(w service.Worker, opts ...service.Option) error {
	opts = append([]service.Option{service.WithPayload(service.PayloadBackground)}, opts...)
	return a.Register(service.Background(w), opts...)
}

// Services returns the registered handles in registration order.
func (a *Application) Services() []*service.Handle {
	return a.registry.Handles()
}

// Config returns the configuration snapshot in use.
func (a *Application) Config() *config.Snapshot {
	return a.config
}

// Lifetime returns the stop source, creating the default signal manager if
// none was configured. Services use it to end the run themselves.
func (a *Application) Lifetime() manager.Manager {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lifetime == nil {
		a.logger.Info("lifetime manager not set, using default signal manager")
		a.lifetime = manager.NewSignal(manager.WithLogger(a.logger), manager.WithPrompt(true))
		a.ownsLifetime = true
	}
	return a.lifetime
}

func (a *Application) closeLifetime() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ownsLifetime {
		return
	}
	if c, ok := a.lifetime.(io.Closer); ok {
		_ = c.Close()
	}
}

// State returns the current orchestrator state.
func (a *Application) State() State {
	return State(a.state.Load())
}

func (a *Application) setState(s State) {
	a.state.Store(int32(s))
	if a.metrics != nil {
		a.metrics.SetState(s.String())
	}
}

func (a *Application) timeouts() config.CoreConfig {
	if a.override != nil {
		return *a.override
	}
	return a.config.Value()
}
