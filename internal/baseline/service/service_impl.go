package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/baseline/domain"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"github.com/voltgrid/enbase/internal/observability/logger"
	"github.com/voltgrid/enbase/internal/observability/metrics"
	qualityservice "github.com/voltgrid/enbase/internal/quality/service"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

// defaultWindowDays is the training window when the request leaves the
// range empty. Twelve months captures a full seasonal cycle.
const defaultWindowDays = 365

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	SEUs     seudomain.Service
	Sources  sourcedomain.Service
	Catalog  catalogdomain.Service
	Provider aggregatedomain.Provider
	Quality  *qualityservice.Service
	Engine   *config.EngineConfigHolder
	Metrics  *metrics.Metrics
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	seus     seudomain.Service
	sources  sourcedomain.Service
	catalog  catalogdomain.Service
	provider aggregatedomain.Provider
	quality  *qualityservice.Service
	engine   *config.EngineConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("baseline.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		seus:     p.SEUs,
		sources:  p.Sources,
		catalog:  p.Catalog,
		provider: p.Provider,
		quality:  p.Quality,
		engine:   p.Engine,
		metrics:  p.Metrics,
	}
}

func (s *Service) Train(ctx context.Context, req domain.TrainRequest) (*domain.TrainResult, error) {
	started := s.clock.Now()
	cfg := s.engine.Current()
	log := logger.WithSEU(logger.WithContext(ctx, s.log), req.SEU, req.EnergySource)

	seu, err := s.seus.Resolve(ctx, req.SEU, req.EnergySource)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.GetByCode(ctx, req.EnergySource)
	if err != nil {
		return nil, err
	}
	seuID, err := snowflake.ParseString(seu.ID)
	if err != nil {
		return nil, fmt.Errorf("parse seu id: %w", err)
	}
	sourceID, err := snowflake.ParseString(source.ID)
	if err != nil {
		return nil, fmt.Errorf("parse energy source id: %w", err)
	}

	windowEnd := req.WindowEnd
	if windowEnd.IsZero() {
		windowEnd = started.Truncate(24 * time.Hour)
	}
	windowStart := req.WindowStart
	if windowStart.IsZero() {
		windowStart = windowEnd.AddDate(0, 0, -defaultWindowDays)
	}

	rows, err := s.provider.DailyAggregates(ctx, aggregatedomain.Request{
		EquipmentIDs: seu.EquipmentIDs,
		EnergySource: source.Code,
		Start:        windowStart,
		End:          windowEnd,
	})
	if err != nil {
		s.metrics.RecordTraining(ctx, source.Code, "fetch_failed", s.clock.Now().Sub(started))
		return nil, err
	}

	if source.TemperatureSensitive {
		rows = aggregatedomain.NormalizeTemperature(rows, cfg.DegreeDayBaseTempC)
	}

	usable, score, err := s.quality.FilterUsable(ctx, seuID, rows)
	if err != nil {
		s.metrics.RecordTraining(ctx, source.Code, "insufficient_quality", s.clock.Now().Sub(started))
		return nil, err
	}

	var result *fit
	if req.AutoSelect() {
		result, err = stepwiseSelect(usable, candidateFeatures(usable), cfg)
	} else {
		features, verr := s.resolveFeatures(ctx, source, req.Features)
		if verr != nil {
			return nil, verr
		}
		result, err = fitOLS(usable, features)
	}
	if err != nil {
		s.metrics.RecordTraining(ctx, source.Code, "fit_failed", s.clock.Now().Sub(started))
		return nil, err
	}

	if result.RSquared < cfg.MinRSquared {
		s.metrics.RecordTraining(ctx, source.Code, "rejected", s.clock.Now().Sub(started))
		log.Info("baseline rejected below minimum r_squared",
			zap.Float64("r_squared", result.RSquared),
			zap.Strings("features", result.Features),
		)
		return nil, &domain.LowQualityModelError{
			SEU:          seu.Name,
			EnergySource: source.Code,
			RSquared:     result.RSquared,
			Minimum:      cfg.MinRSquared,
			Features:     result.Features,
		}
	}

	confidence := domain.ConfidenceStandard
	switch {
	case result.RSquared < cfg.LowConfidenceRSquared:
		confidence = domain.ConfidenceLow
	case result.RSquared > cfg.OverfitRSquared:
		confidence = domain.ConfidenceOverfit
	}

	now := s.clock.Now()
	model := &domain.BaselineModel{
		ID:             s.genID.Generate(),
		SEUID:          seuID,
		EnergySourceID: sourceID,
		TrainedAt:      now,
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		FeatureNames:   datatypes.NewJSONSlice(result.Features),
		Coefficients:   datatypes.NewJSONType(result.Coefficients),
		Intercept:      result.Intercept,
		RSquared:       result.RSquared,
		RMSE:           result.RMSE,
		// 95% interval under approximately normal residuals.
		PredictionInterval: 1.96 * result.RMSE,
		SampleCount:        result.SampleCount,
		Confidence:         confidence,
		CreatedAt:          now,
	}

	adjustmentType := req.AdjustmentType
	if adjustmentType == "" {
		adjustmentType = domain.AdjustmentInitial
		if prior, perr := s.repo.FindActive(ctx, s.db, seuID, sourceID); perr == nil && prior != nil {
			adjustmentType = domain.AdjustmentScheduledRetrain
		}
	}
	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("trained on %d usable days, r_squared %.3f", result.SampleCount, result.RSquared)
	}
	adjustment := &domain.BaselineAdjustment{
		ID:               s.genID.Generate(),
		SEUID:            seuID,
		AdjustedAt:       now,
		AdjustmentType:   adjustmentType,
		Reason:           reason,
		AdjustmentFactor: 1,
		CreatedAt:        now,
	}

	if err := s.repo.Activate(ctx, s.db, model, adjustment); err != nil {
		s.metrics.RecordTraining(ctx, source.Code, "store_failed", s.clock.Now().Sub(started))
		return nil, err
	}

	s.metrics.RecordTraining(ctx, source.Code, "accepted", s.clock.Now().Sub(started))
	s.metrics.RecordActivation(ctx, source.Code, confidence)
	log.Info("baseline model activated",
		zap.Int64("model_id", int64(model.ID)),
		zap.Int("version", model.Version),
		zap.Float64("r_squared", model.RSquared),
		zap.Strings("features", result.Features),
		zap.String("confidence", confidence),
	)

	dropped := len(rows) - result.SampleCount
	return &domain.TrainResult{
		Model:           model,
		Unit:            source.Unit,
		UsableDays:      result.SampleCount,
		DroppedDays:     dropped,
		FormulaReadable: readableFormula(result.Features, result.Coefficients),
		Message:         trainMessage(seu.Name, source.Code, model, score.Composite, confidence),
	}, nil
}

// readableFormula phrases the fitted coefficients as directional clauses,
// strongest driver first, safe to read aloud verbatim.
func readableFormula(features []string, coefficients map[string]float64) string {
	ordered := append([]string(nil), features...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return math.Abs(coefficients[ordered[i]]) > math.Abs(coefficients[ordered[j]])
	})

	clauses := make([]string, 0, len(ordered))
	for _, feature := range ordered {
		direction := "increases"
		if coefficients[feature] < 0 {
			direction = "decreases"
		}
		clauses = append(clauses, fmt.Sprintf("%s with %s", direction, catalogdomain.DisplayName(feature)))
	}
	if len(clauses) == 0 {
		return ""
	}
	return "Energy consumption " + strings.Join(clauses, " and ")
}

// resolveFeatures validates an explicit feature list against the catalog.
// For temperature-sensitive sources the raw outdoor_temp driver trains as
// degree-days, and the degree-day names are accepted as aliases of it.
func (s *Service) resolveFeatures(ctx context.Context, source *sourcedomain.Response, requested []string) ([]string, error) {
	toValidate := make([]string, 0, len(requested))
	resolved := make([]string, 0, len(requested)+1)
	for _, name := range requested {
		switch {
		case source.TemperatureSensitive && name == aggregatedomain.DriverOutdoorTemp:
			toValidate = append(toValidate, aggregatedomain.DriverOutdoorTemp)
			resolved = append(resolved,
				aggregatedomain.DriverHeatingDegreeDays,
				aggregatedomain.DriverCoolingDegreeDays)
		case source.TemperatureSensitive &&
			(name == aggregatedomain.DriverHeatingDegreeDays || name == aggregatedomain.DriverCoolingDegreeDays):
			toValidate = append(toValidate, aggregatedomain.DriverOutdoorTemp)
			resolved = append(resolved, name)
		default:
			toValidate = append(toValidate, name)
			resolved = append(resolved, name)
		}
	}
	if err := s.catalog.Validate(ctx, source.Code, toValidate); err != nil {
		return nil, err
	}
	return dedupe(resolved), nil
}

func (s *Service) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResult, error) {
	model, err := s.ActiveModel(ctx, req.SEU, req.EnergySource)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.GetByCode(ctx, req.EnergySource)
	if err != nil {
		return nil, err
	}

	prediction, err := model.Predict(req.Features)
	if err != nil {
		return nil, err
	}
	prediction.Unit = source.Unit

	s.metrics.RecordPrediction(ctx, source.Code)
	return &domain.PredictResult{
		Prediction:   prediction,
		ModelID:      model.ID,
		ModelVersion: model.Version,
		Confidence:   model.Confidence,
		Message: fmt.Sprintf("Expected consumption for %s on %s is about %.0f %s, between %.0f and %.0f at 95 percent confidence.",
			req.SEU, source.Code, prediction.PointEstimate, source.Unit,
			prediction.LowerBound, prediction.UpperBound),
	}, nil
}

func (s *Service) ActiveModel(ctx context.Context, seuName, energySource string) (*domain.BaselineModel, error) {
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

	model, err := s.repo.FindActive(ctx, s.db, seuID, sourceID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, &domain.NoActiveModelError{SEU: seu.Name, EnergySource: seu.EnergySource}
	}
	return model, nil
}

func trainMessage(seuName, source string, model *domain.BaselineModel, composite float64, confidence string) string {
	msg := fmt.Sprintf("Baseline version %d trained for %s on %s: R squared %.2f over %d usable days using %s.",
		model.Version, seuName, source, model.RSquared, model.SampleCount,
		strings.Join(model.FeatureNames, ", "))
	switch confidence {
	case domain.ConfidenceLow:
		msg += " Accuracy is moderate, so treat deviation reports as indicative rather than exact."
	case domain.ConfidenceOverfit:
		msg += " The fit is suspiciously perfect; review the selected features for redundancy before relying on it."
	}
	if composite < 0.8 {
		msg += fmt.Sprintf(" Note: window data quality scored %.0f%%.", composite*100)
	}
	return msg
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
