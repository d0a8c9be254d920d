package catalog

import (
	"github.com/voltgrid/enbase/internal/cache"
	"github.com/voltgrid/enbase/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(cache.NewDriverCache),
	fx.Provide(service.New),
)
