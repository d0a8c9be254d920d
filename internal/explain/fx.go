package explain

import (
	"github.com/voltgrid/enbase/internal/explain/service"
	"go.uber.org/fx"
)

var Module = fx.Module("explain.service",
	fx.Provide(service.New),
)
