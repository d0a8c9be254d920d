package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/voltgrid/enbase/internal/aggregate"
	"github.com/voltgrid/enbase/internal/baseline"
	"github.com/voltgrid/enbase/internal/catalog"
	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	"github.com/voltgrid/enbase/internal/energysource"
	"github.com/voltgrid/enbase/internal/migration"
	"github.com/voltgrid/enbase/internal/observability"
	"github.com/voltgrid/enbase/internal/performance"
	"github.com/voltgrid/enbase/internal/quality"
	"github.com/voltgrid/enbase/internal/scheduler"
	"github.com/voltgrid/enbase/internal/seu"
	"github.com/voltgrid/enbase/pkg/db"
)

// Standalone scheduler process for deployments that scale the API and the
// background work separately. Pair it with SCHEDULER_ENABLED=false on the
// API binary so exactly one loop runs.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain services required by the jobs
		energysource.Module,
		seu.Module,
		aggregate.Module,
		catalog.Module,
		quality.Module,
		baseline.Module,
		performance.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
