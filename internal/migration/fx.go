package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/config"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	"github.com/voltgrid/enbase/internal/seed"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL deployments are dev-grade; gorm derives the
			// schema from the models there.
			if err := conn.AutoMigrate(
				&sourcedomain.EnergySource{},
				&seudomain.SEU{},
				&baselinedomain.BaselineModel{},
				&baselinedomain.BaselineAdjustment{},
				&performancedomain.PerformanceReport{},
				&qualitydomain.DataQualityRecord{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultEnergySources(conn)
	}),
)
