package quality

import (
	"github.com/voltgrid/enbase/internal/quality/repository"
	"github.com/voltgrid/enbase/internal/quality/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quality.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
