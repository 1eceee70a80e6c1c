//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/driftlab/internal/core/observability/log"
	"github.com/zeusync/driftlab/internal/core/systems"
)

func InitializeWorld(cfg log.Config) (*systems.World, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
