package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"github.com/voltgrid/enbase/internal/observability/logger"
	"github.com/voltgrid/enbase/internal/observability/metrics"
	"github.com/voltgrid/enbase/internal/performance/domain"
	qualityservice "github.com/voltgrid/enbase/internal/quality/service"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Baselines baselinedomain.Service
	SEUs      seudomain.Service
	Sources   sourcedomain.Service
	Provider  aggregatedomain.Provider
	Quality   *qualityservice.Service
	Engine    *config.EngineConfigHolder
	Metrics   *metrics.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	baselines baselinedomain.Service
	seus      seudomain.Service
	sources   sourcedomain.Service
	provider  aggregatedomain.Provider
	quality   *qualityservice.Service
	engine    *config.EngineConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("performance.service"),
		cfg:       p.Cfg,
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		baselines: p.Baselines,
		seus:      p.SEUs,
		sources:   p.Sources,
		provider:  p.Provider,
		quality:   p.Quality,
		engine:    p.Engine,
		metrics:   p.Metrics,
	}
}

func (s *Service) GenerateReport(ctx context.Context, req domain.ReportRequest) (*domain.ReportResult, error) {
	cfg := s.engine.Current()

	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	model, err := s.baselines.ActiveModel(ctx, req.SEU, req.EnergySource)
	if err != nil {
		return nil, err
	}
	seu, err := s.seus.Resolve(ctx, req.SEU, req.EnergySource)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.GetByCode(ctx, req.EnergySource)
	if err != nil {
		return nil, err
	}

	rows, err := s.provider.DailyAggregates(ctx, aggregatedomain.Request{
		EquipmentIDs: seu.EquipmentIDs,
		EnergySource: source.Code,
		Start:        period.Start,
		End:          period.End,
	})
	if err != nil {
		return nil, err
	}
	if source.TemperatureSensitive {
		rows = aggregatedomain.NormalizeTemperature(rows, cfg.DegreeDayBaseTempC)
	}

	quality := s.quality.ScoreAndRecord(ctx, model.SEUID, rows)

	// Expected consumption applies the baseline to the drivers the period
	// actually saw, day by day. Same rows, same scales as training.
	actual, expected := 0.0, 0.0
	for _, row := range rows {
		prediction, err := model.Predict(row.Drivers)
		if err != nil {
			return nil, err
		}
		actual += row.EnergyTotal
		expected += prediction.PointEstimate
	}
	if expected <= 0 {
		return nil, &domain.UnusableBaselineError{Period: period.Label}
	}

	deviation := actual - expected
	deviationPct := deviation / expected * 100

	status := domain.StatusCritical
	switch {
	case math.Abs(deviationPct) <= cfg.CompliantThresholdPct:
		status = domain.StatusCompliant
	case math.Abs(deviationPct) <= cfg.WarningThresholdPct:
		status = domain.StatusWarning
	}

	// CUSUM accumulates across consecutive periods under the same model
	// version. It restarts after a retrain or a gap, and at the first
	// period of each calendar year, so annual reporting cycles start
	// from zero.
	cusum := deviationPct
	previous, err := s.repo.FindCurrent(ctx, s.db, model.SEUID, model.EnergySourceID, period.Previous().Label)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.ModelID == model.ID && previous.PeriodStart.Year() == period.Start.Year() {
		cusum = previous.CusumValue + deviationPct
	}
	drift := math.Abs(cusum) >= cfg.CusumControlLimit

	now := s.clock.Now()
	report := &domain.PerformanceReport{
		ID:                  s.genID.Generate(),
		SEUID:               model.SEUID,
		EnergySourceID:      model.EnergySourceID,
		ModelID:             model.ID,
		Period:              period.Label,
		PeriodStart:         period.Start,
		PeriodEnd:           period.End,
		ActualConsumption:   actual,
		ExpectedConsumption: expected,
		DeviationAbsolute:   deviation,
		DeviationPercent:    deviationPct,
		ComplianceStatus:    status,
		CusumValue:          cusum,
		DriftDetected:       drift,
		DataQualityScore:    quality.Composite,
		DaysEvaluated:       len(rows),
		CreatedAt:           now,
	}
	if source.TemperatureSensitive {
		hdd, cdd := degreeDayTotals(rows)
		report.HeatingDegreeDays = &hdd
		report.CoolingDegreeDays = &cdd
	}
	if err := s.repo.InsertSuperseding(ctx, s.db, report); err != nil {
		return nil, err
	}

	s.metrics.RecordReport(ctx, source.Code, status)
	logger.WithSEU(logger.WithContext(ctx, s.log), seu.Code, source.Code).Info("performance report generated",
		zap.String("period", period.Label),
		zap.Float64("deviation_percent", deviationPct),
		zap.String("status", status),
		zap.Bool("drift_detected", drift),
	)

	return &domain.ReportResult{
		Report:  report,
		Unit:    source.Unit,
		Message: reportMessage(seu.Name, source, report),
	}, nil
}

func (s *Service) GenerateBatch(ctx context.Context, req domain.BatchRequest) (*domain.BatchResult, error) {
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	seus, err := s.seus.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{Period: period.Label}
	var mu sync.Mutex

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.BatchConcurrency)

	for _, seu := range seus {
		if req.EnergySource != "" && seu.EnergySource != req.EnergySource {
			continue
		}
		// Cancellation stops scheduling further SEUs; pairs already running
		// finish their own report.
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			reported, err := s.GenerateReport(gctx, domain.ReportRequest{
				SEU:          seu.Code,
				EnergySource: seu.EnergySource,
				Period:       period.Label,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, domain.BatchFailure{
					SEU:          seu.Code,
					EnergySource: seu.EnergySource,
					ErrorCode:    errorCode(err),
					Message:      err.Error(),
				})
				return nil
			}
			result.Reports = append(result.Reports, *reported)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result.Reports, func(i, j int) bool {
		return result.Reports[i].Report.SEUID < result.Reports[j].Report.SEUID
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		if result.Failures[i].SEU != result.Failures[j].SEU {
			return result.Failures[i].SEU < result.Failures[j].SEU
		}
		return result.Failures[i].EnergySource < result.Failures[j].EnergySource
	})
	return result, nil
}

func (s *Service) ListReports(ctx context.Context, seuName, energySource string, limit int) ([]domain.PerformanceReport, error) {
	seu, err := s.seus.Resolve(ctx, seuName, energySource)
	if err != nil {
		return nil, err
	}
	seuID, err := snowflake.ParseString(seu.ID)
	if err != nil {
		return nil, fmt.Errorf("parse seu id: %w", err)
	}
	sourceID, err := snowflake.ParseString(seu.EnergySourceID)
	if err != nil {
		return nil, fmt.Errorf("parse energy source id: %w", err)
	}
	return s.repo.List(ctx, s.db, seuID, sourceID, limit)
}

func reportMessage(seuName string, source *sourcedomain.Response, report *domain.PerformanceReport) string {
	direction := "above"
	if report.DeviationAbsolute < 0 {
		direction = "below"
	}
	msg := fmt.Sprintf("%s on %s used %.0f %s in %s, %.1f%% %s the expected %.0f %s.",
		seuName, source.Code, report.ActualConsumption, source.Unit, report.Period,
		math.Abs(report.DeviationPercent), direction, report.ExpectedConsumption, source.Unit)

	switch report.ComplianceStatus {
	case domain.StatusCompliant:
		msg += " That is within the normal band."
	case domain.StatusWarning:
		msg += " That is outside the normal band and worth a look."
	case domain.StatusCritical:
		msg += " That is well outside the normal band; investigate this SEU."
	}
	if report.DriftDetected {
		msg += " Consumption has drifted in the same direction for several periods, which usually means the baseline no longer matches operations. Consider retraining."
	}
	if report.DataQualityScore < 0.8 {
		msg += fmt.Sprintf(" Data quality for this period scored %.0f%%, so treat the deviation with caution.", report.DataQualityScore*100)
	}
	return msg
}

// degreeDayTotals sums the normalized per-day degree-day drivers over the
// period, for the report's weather context.
func degreeDayTotals(rows []aggregatedomain.DailyRow) (hdd, cdd float64) {
	for _, row := range rows {
		hdd += row.Drivers[aggregatedomain.DriverHeatingDegreeDays]
		cdd += row.Drivers[aggregatedomain.DriverCoolingDegreeDays]
	}
	return hdd, cdd
}

func errorCode(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return "internal_error"
}
