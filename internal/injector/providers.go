package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems"
)

// ProviderSet builds the simulation host: process logger, event bus and world.
var ProviderSet = wire.NewSet(ProvideLogger, bus.New, ProvideWorld)

func ProvideLogger(cfg log.Config) (log.Log, error) {
	l, err := log.New(cfg)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func ProvideWorld(eventBus bus.EventBus, logger log.Log) *systems.World {
	return systems.NewWorld(eventBus, logger)
}
