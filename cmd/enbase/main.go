package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	"github.com/voltgrid/enbase/internal/migration"
	"github.com/voltgrid/enbase/internal/observability"
	"github.com/voltgrid/enbase/internal/scheduler"
	"github.com/voltgrid/enbase/internal/server"
	"github.com/voltgrid/enbase/pkg/db"
)

// The monolith: HTTP API, migrations and the background scheduler in one
// process. Deployments that want a separate scheduler set
// SCHEDULER_ENABLED=false here and run apps/scheduler.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
