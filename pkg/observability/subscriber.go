package observability

import (
	"context"
	"fmt"

	"workable/application/ports"
	"workable/domain/events"
)

// subscribedTypes lists the metric-bearing event types
var subscribedTypes = []string{
	"unit.created",
	"unit.converted",
	"registry.unit_registered",
	"registry.unit_deleted",
	"content.frame_moved",
	"content.repaired",
}

// MetricsSubscriber feeds the collector from domain events so the
// aggregate stays free of metrics concerns
type MetricsSubscriber struct {
	collector *Collector
}

// NewMetricsSubscriber creates a new metrics subscriber
func NewMetricsSubscriber(collector *Collector) *MetricsSubscriber {
	return &MetricsSubscriber{collector: collector}
}

// Register subscribes the handler for every metric-bearing event type
func (s *MetricsSubscriber) Register(bus ports.EventBus) error {
	for _, eventType := range subscribedTypes {
		if err := bus.Subscribe(eventType, s); err != nil {
			return err
		}
	}
	return nil
}

// Handle updates the metrics touched by the event
func (s *MetricsSubscriber) Handle(_ context.Context, event events.DomainEvent) error {
	switch e := event.(type) {
	case events.UnitCreated:
		s.collector.UnitsCreated.Inc()
	case events.UnitRegistered:
		s.collector.RegisteredUnits.Inc()
		s.collector.UnitsByKind.WithLabelValues(kindOf(e.Atomic)).Inc()
	case events.UnitDeleted:
		s.collector.UnitsDeleted.Inc()
		s.collector.RegisteredUnits.Dec()
		s.collector.UnitsByKind.WithLabelValues(kindOf(e.Atomic)).Dec()
	case events.UnitConverted:
		s.collector.Conversions.WithLabelValues(fmt.Sprintf("%s_to_%s", e.From, e.To)).Inc()
		s.collector.UnitsByKind.WithLabelValues(e.From).Dec()
		s.collector.UnitsByKind.WithLabelValues(e.To).Inc()
	case events.FrameMoved:
		s.collector.FramesMoved.Inc()
	case events.ContentRepaired:
		s.collector.Repairs.Inc()
	}
	return nil
}

// CanHandle reports whether the event type carries metrics
func (s *MetricsSubscriber) CanHandle(eventType string) bool {
	for _, t := range subscribedTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

func kindOf(atomic bool) string {
	if atomic {
		return KindAtomic
	}
	return KindComposite
}
