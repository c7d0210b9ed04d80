package app

import "github.com/Phillezi/apphost/pkg/config"

// Startup configures an application right before it starts. It may register
// services and adjust the configuration. Its error aborts Run unchanged.
type Startup interface {
	Configure(a *Application, cfg *config.Snapshot) error
}

// StartupFunc adapts a function to Startup.
type StartupFunc func(a *Application, cfg *config.Snapshot) error

func (f StartupFunc) Configure(a *Application, cfg *config.Snapshot) error { return f(a, cfg) }
