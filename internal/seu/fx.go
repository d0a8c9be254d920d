package seu

import (
	"github.com/voltgrid/enbase/internal/seu/repository"
	"github.com/voltgrid/enbase/internal/seu/service"
	"go.uber.org/fx"
)

var Module = fx.Module("seu.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
