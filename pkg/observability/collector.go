package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Kind labels for the registered-units gauge
const (
	KindAtomic    = "atomic"
	KindComposite = "composite"
)

// Collector holds all Prometheus metrics for the application.
// Every collector carries its own registry so tests and embedded
// deployments never fight over the default one.
type Collector struct {
	registry *prometheus.Registry

	// Lifecycle counters
	UnitsCreated prometheus.Counter
	UnitsDeleted prometheus.Counter
	Conversions  *prometheus.CounterVec
	FramesMoved  prometheus.Counter
	Repairs      prometheus.Counter

	// Registry state gauges
	RegisteredUnits prometheus.Gauge
	UnitsByKind     *prometheus.GaugeVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	unitsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_created_total",
			Help:      "Total number of units created, locals included",
		},
	)

	unitsDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_deleted_total",
			Help:      "Total number of units deleted from the registry",
		},
	)

	conversions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Total number of mode conversions",
		},
		[]string{"direction"},
	)

	framesMoved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_moved_total",
			Help:      "Total number of frame reorderings",
		},
	)

	repairs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repairs_total",
			Help:      "Total number of content repairs",
		},
	)

	registeredUnits := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_units",
			Help:      "Number of units currently registered",
		},
	)

	unitsByKind := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units",
			Help:      "Number of registered units by kind",
		},
		[]string{"kind"},
	)

	registry.MustRegister(
		unitsCreated,
		unitsDeleted,
		conversions,
		framesMoved,
		repairs,
		registeredUnits,
		unitsByKind,
	)

	return &Collector{
		registry:        registry,
		UnitsCreated:    unitsCreated,
		UnitsDeleted:    unitsDeleted,
		Conversions:     conversions,
		FramesMoved:     framesMoved,
		Repairs:         repairs,
		RegisteredUnits: registeredUnits,
		UnitsByKind:     unitsByKind,
	}
}

// Gather collects the current state of every registered metric
func (c *Collector) Gather() ([]*dto.MetricFamily, error) {
	return c.registry.Gather()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
