package di

import (
	"go.uber.org/zap"

	"workable/application/ports"
	"workable/application/services"
	"workable/domain/core/aggregates"
	"workable/domain/core/validators"
	domainmessaging "workable/domain/messaging"
	"workable/domain/relations"
	"workable/infrastructure/config"
	"workable/infrastructure/messaging"
	"workable/interfaces/export"
	"workable/pkg/observability"
)

// ProvideLogger creates the process logger for the configured
// environment and level
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch cfg.LogLevel {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapConfig.Build()
}

// ProvideRegistry creates the unit registry
func ProvideRegistry(logger *zap.Logger) *aggregates.Registry {
	registry := aggregates.NewRegistry()
	registry.SetLogger(logger)
	return registry
}

// ProvideEventBus creates the in-memory event bus
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	return messaging.NewMemoryBus(logger)
}

// ProvideUnitValidator creates a validator carrying the environment's
// domain rules
func ProvideUnitValidator(cfg *config.Config) *validators.UnitValidator {
	return validators.NewUnitValidatorWithConfig(cfg.DomainProfile())
}

// ProvideUnitService creates the application service
func ProvideUnitService(
	registry *aggregates.Registry,
	eventBus ports.EventBus,
	validator *validators.UnitValidator,
	logger *zap.Logger,
) *services.UnitService {
	return services.NewUnitService(registry, eventBus, validator, logger)
}

// ProvideCollector creates the prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideExchange creates the message exchange
func ProvideExchange(logger *zap.Logger) *domainmessaging.Exchange {
	exchange := domainmessaging.NewExchange()
	exchange.SetLogger(logger)
	return exchange
}

// ProvideRelationStore creates the relation store
func ProvideRelationStore(logger *zap.Logger) *relations.Store {
	store := relations.NewStore()
	store.SetLogger(logger)
	return store
}

// ProvideVisualizer creates the registry visualizer
func ProvideVisualizer(registry *aggregates.Registry) *export.Visualizer {
	return export.NewVisualizer(registry)
}
