package energysource

import (
	"github.com/voltgrid/enbase/internal/energysource/repository"
	"github.com/voltgrid/enbase/internal/energysource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("energysource.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
