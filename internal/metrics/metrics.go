// Package metrics records one wrapper run into a private Prometheus
// registry and writes it out in the node_exporter textfile format.
package metrics

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moby9098"

// Recorder owns a registry with the wrapper's collectors. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	launches      *prometheus.CounterVec
	spawnFailures *prometheus.CounterVec
	lastExitCode  *prometheus.GaugeVec
	runDuration   *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launch_total",
				Help:      "Number of launched commands by termination outcome.",
			}, []string{"command", "outcome"},
		),
		spawnFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spawn_failures_total",
				Help:      "Number of commands that could not be started.",
			}, []string{"command", "code"},
		),
		lastExitCode: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_exit_code",
				Help:      "Exit code the wrapper returned for the last run of a command.",
			}, []string{"command"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time between spawn and termination of the child.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
			}, []string{"command"},
		),
	}
	r.reg.MustRegister(r.launches, r.spawnFailures, r.lastExitCode, r.runDuration)
	return r
}

// ObserveExit records a child that was started and waited for.
func (r *Recorder) ObserveExit(command, outcome string, exitCode int, d time.Duration) {
	if r == nil {
		return
	}
	c := commandLabel(command)
	r.launches.WithLabelValues(c, outcome).Inc()
	r.lastExitCode.WithLabelValues(c).Set(float64(exitCode))
	r.runDuration.WithLabelValues(c).Observe(d.Seconds())
}

// ObserveSpawnFailure records a command that never started.
func (r *Recorder) ObserveSpawnFailure(command string, exitCode int) {
	if r == nil {
		return
	}
	c := commandLabel(command)
	r.spawnFailures.WithLabelValues(c, strconv.Itoa(exitCode)).Inc()
	r.lastExitCode.WithLabelValues(c).Set(float64(exitCode))
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

// commandLabel keeps label cardinality to the program name.
func commandLabel(command string) string {
	return filepath.Base(command)
}
