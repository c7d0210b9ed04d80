package metrics

import "time"

// Hook outcomes passed to RecordHook.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// LifecycleMetrics observes the orchestrator. It is optional; a nil value
// disables collection.
//
// Example usage:
//
//	reg := prometheus.NewRegistry()
//	a := app.New(app.WithMetrics(promlifecycle.NewLifecycleMetrics(reg)))
type LifecycleMetrics interface {
	// RecordHook records a finished start or stop hook. Hooks that outlive
	// their timeout are recorded when they eventually return.
	RecordHook(phase, service string, duration time.Duration, outcome string)

	// RecordTimeout counts a hook the orchestrator stopped waiting for.
	RecordTimeout(phase, service string)

	// SetState publishes the orchestrator state.
	SetState(state string)
}
