package performance

import (
	"github.com/voltgrid/enbase/internal/performance/repository"
	"github.com/voltgrid/enbase/internal/performance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("performance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
