package prometheus

import (
	"sync"
	"time"

	"github.com/Phillezi/apphost/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// States exported through apphost_state, one series per state.
var States = []string{"idle", "starting", "running", "stopping", "stopped", "failed"}

type lifecycleMetrics struct {
	hookDuration *prometheus.HistogramVec
	hooks        *prometheus.CounterVec
	timeouts     *prometheus.CounterVec
	state        *prometheus.GaugeVec

	mu sync.Mutex
}

// NewLifecycleMetrics registers the lifecycle collectors on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewLifecycleMetrics(reg prometheus.Registerer) metrics.LifecycleMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &lifecycleMetrics{
		hookDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "apphost_hook_duration_milliseconds",
				Help: "Duration of service start and stop hooks in milliseconds",
				Buckets: []float64{
					1,     // 1ms - in-memory services
					10,    // 10ms
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms - network binds, pools
					1000,  // 1s
					5000,  // 5s - default timeout
					10000, // 10s
				},
			},
			[]string{"phase", "service"},
		),
		hooks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "apphost_hooks_total",
				Help: "Total number of finished service hooks by phase and outcome",
			},
			[]string{"phase", "service", "outcome"}, // outcome: "ok", "error"
		),
		timeouts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "apphost_hook_timeouts_total",
				Help: "Total number of service hooks that exceeded their phase timeout",
			},
			[]string{"phase", "service"},
		),
		state: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apphost_state",
				Help: "Current orchestrator state, 1 for the active state and 0 otherwise",
			},
			[]string{"state"},
		),
	}
}

func (m *lifecycleMetrics) RecordHook(phase, service string, duration time.Duration, outcome string) {
	m.hookDuration.WithLabelValues(phase, service).Observe(float64(duration.Microseconds()) / 1000)
	m.hooks.WithLabelValues(phase, service, outcome).Inc()
}

func (m *lifecycleMetrics) RecordTimeout(phase, service string) {
	m.timeouts.WithLabelValues(phase, service).Inc()
}

func (m *lifecycleMetrics) SetState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		m.state.WithLabelValues(s).Set(v)
	}
}
