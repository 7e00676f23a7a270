// Package di wires the application's dependency graph. Wiring is done
// by hand in construction order; the Provide functions stay separate so
// each dependency's recipe is readable and testable on its own.
package di

import (
	"fmt"

	"go.uber.org/zap"

	"workable/application/ports"
	"workable/application/services"
	"workable/domain/core/aggregates"
	"workable/domain/core/validators"
	domainmessaging "workable/domain/messaging"
	"workable/domain/relations"
	"workable/infrastructure/config"
	"workable/interfaces/export"
	"workable/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Registry    *aggregates.Registry
	EventBus    ports.EventBus
	Validator   *validators.UnitValidator
	UnitService *services.UnitService
	Collector   *observability.Collector
	Exchange    *domainmessaging.Exchange
	Relations   *relations.Store
	Visualizer  *export.Visualizer
}

// NewContainer creates a fully wired container for the given
// configuration. The metrics subscriber is attached to the bus only
// when metrics are enabled.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	registry := ProvideRegistry(logger)
	eventBus := ProvideEventBus(logger)
	validator := ProvideUnitValidator(cfg)
	unitService := ProvideUnitService(registry, eventBus, validator, logger)
	collector := ProvideCollector(cfg)

	if cfg.EnableMetrics {
		subscriber := observability.NewMetricsSubscriber(collector)
		if err := subscriber.Register(eventBus); err != nil {
			return nil, fmt.Errorf("failed to register metrics subscriber: %w", err)
		}
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Registry:    registry,
		EventBus:    eventBus,
		Validator:   validator,
		UnitService: unitService,
		Collector:   collector,
		Exchange:    ProvideExchange(logger),
		Relations:   ProvideRelationStore(logger),
		Visualizer:  ProvideVisualizer(registry),
	}, nil
}

// Shutdown flushes buffered log entries. Sync errors on closed stderr
// are expected during process teardown and ignored.
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
