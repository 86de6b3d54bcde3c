package autoload

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Run results, used as the "result" label.
const (
	ResultSuccess        = "success"
	ResultUnsupportedOS  = "unsupported_os"
	ResultStructureError = "structure_error"
	ResultTopologyError  = "topology_error"
	ResultError          = "error"
)

// Metrics are the prometheus collectors of discovery runs.
type Metrics struct {
	Runs               *prometheus.CounterVec
	PortsPlaced        *prometheus.CounterVec
	NodesSynthesized   *prometheus.CounterVec
	PortsDropped       prometheus.Counter
	MappingAmbiguities prometheus.Counter
	Duration           prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoload_runs_total",
				Help: "Total number of discovery runs by result.",
			},
			[]string{"result"},
		),
		PortsPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoload_ports_placed_total",
				Help: "Ports placed in the resource tree by placement path.",
			},
			[]string{"path"},
		),
		NodesSynthesized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoload_nodes_synthesized_total",
				Help: "Modules and sub-modules created from port ids alone.",
			},
			[]string{"kind"},
		),
		PortsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoload_ports_dropped_total",
			Help: "Ports dropped by the port exclude pattern.",
		}),
		MappingAmbiguities: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "autoload_mapping_ambiguities_total",
			Help: "Physical ports whose id matched more than one interface.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "autoload_run_duration_seconds",
			Help:    "Discovery run duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.PortsPlaced, m.NodesSynthesized, m.PortsDropped, m.MappingAmbiguities, m.Duration)
	}
	return m
}
