// Package metrics exposes Prometheus instrumentation for the harness.
package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	validatorUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "amman",
		Name:      "validator_up",
		Help:      "Whether the supervisor currently believes a validator is running (1=yes, 0=no).",
	})

	validatorStarts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "amman",
		Name:      "validator_starts_total",
		Help:      "Total number of validator processes spawned by this harness.",
	})

	validatorKills = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amman",
		Name:      "validator_kills_total",
		Help:      "Total number of validator terminations, by ownership path.",
	}, []string{"path"})

	readinessWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "amman",
		Name:      "readiness_wait_seconds",
		Help:      "Time spent waiting for the validator to become discoverable and bind its ports.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "amman",
		Name:      "build_info",
		Help:      "Build metadata for the running ammanctl binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(validatorUp, validatorStarts, validatorKills, readinessWait, buildInfo)
}

// Registry returns the Prometheus registry containing all harness metrics.
func Registry() *prometheus.Registry {
	return registry
}

// SetValidatorUp records the supervisor's current liveness belief.
func SetValidatorUp(up bool) {
	value := 0.0
	if up {
		value = 1.0
	}
	validatorUp.Set(value)
}

// IncValidatorStarts counts a successful spawn.
func IncValidatorStarts() {
	validatorStarts.Inc()
}

// IncValidatorKills counts a completed termination. The path label is
// "owned" for handle-based kills and "external" for out-of-band stops.
func IncValidatorKills(path string) {
	if path == "" {
		path = "unknown"
	}
	validatorKills.WithLabelValues(path).Inc()
}

// ObserveReadinessWait records how long a start spent in its readiness waits.
func ObserveReadinessWait(d time.Duration) {
	readinessWait.Observe(d.Seconds())
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
