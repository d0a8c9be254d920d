// Package server exposes the engine over HTTP. Handlers translate requests
// into service calls and push failures through the error middleware, so
// every response carries the same envelope.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/voltgrid/enbase/internal/aggregate"
	"github.com/voltgrid/enbase/internal/baseline"
	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/catalog"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	"github.com/voltgrid/enbase/internal/config"
	"github.com/voltgrid/enbase/internal/energysource"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"github.com/voltgrid/enbase/internal/explain"
	explaindomain "github.com/voltgrid/enbase/internal/explain/domain"
	"github.com/voltgrid/enbase/internal/observability"
	obsmiddleware "github.com/voltgrid/enbase/internal/observability/logger"
	obstracing "github.com/voltgrid/enbase/internal/observability/tracing"
	"github.com/voltgrid/enbase/internal/performance"
	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
	"github.com/voltgrid/enbase/internal/quality"
	"github.com/voltgrid/enbase/internal/seu"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	energysource.Module,
	seu.Module,
	aggregate.Module,
	catalog.Module,
	quality.Module,
	baseline.Module,
	explain.Module,
	performance.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	sourceSvc      sourcedomain.Service
	seuSvc         seudomain.Service
	catalogSvc     catalogdomain.Service
	baselineSvc    baselinedomain.Service
	explainSvc     explaindomain.Service
	performanceSvc performancedomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	SourceSvc      sourcedomain.Service
	SEUSvc         seudomain.Service
	CatalogSvc     catalogdomain.Service
	BaselineSvc    baselinedomain.Service
	ExplainSvc     explaindomain.Service
	PerformanceSvc performancedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		sourceSvc:      p.SourceSvc,
		seuSvc:         p.SEUSvc,
		catalogSvc:     p.CatalogSvc,
		baselineSvc:    p.BaselineSvc,
		explainSvc:     p.ExplainSvc,
		performanceSvc: p.PerformanceSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/energy-sources", s.ListEnergySources)

	v1.POST("/seus", s.CreateSEU)
	v1.GET("/seus", s.ListSEUs)
	v1.GET("/seus/:seu/features", s.ListSEUFeatures)
	v1.GET("/seus/:seu/reports", s.ListReports)

	v1.POST("/baselines/train", s.TrainBaseline)
	v1.POST("/baselines/predict", s.PredictBaseline)
	v1.GET("/baselines/explain", s.ExplainBaseline)
	v1.GET("/baselines/explain/all", s.ExplainAllBaselines)

	v1.POST("/reports/generate", s.GenerateReport)
	v1.POST("/reports/batch", s.GenerateReportBatch)
}
