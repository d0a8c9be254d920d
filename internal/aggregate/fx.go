package aggregate

import (
	"github.com/voltgrid/enbase/internal/aggregate/client"
	"go.uber.org/fx"
)

var Module = fx.Module("aggregate.client",
	fx.Provide(client.New),
)
