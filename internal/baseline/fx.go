package baseline

import (
	"github.com/voltgrid/enbase/internal/baseline/repository"
	"github.com/voltgrid/enbase/internal/baseline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("baseline.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
