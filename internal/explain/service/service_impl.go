package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"github.com/voltgrid/enbase/internal/explain/domain"
	"github.com/voltgrid/enbase/internal/observability/logger"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

// scenarioWindowDays is how far back the sample scenario looks for typical
// driver values.
const scenarioWindowDays = 30

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	Engine    *config.EngineConfigHolder
	Baselines baselinedomain.Service
	SEUs      seudomain.Service
	Sources   sourcedomain.Service
	Provider  aggregatedomain.Provider
}

type Service struct {
	log       *zap.Logger
	cfg       config.Config
	clock     clock.Clock
	engine    *config.EngineConfigHolder
	baselines baselinedomain.Service
	seus      seudomain.Service
	sources   sourcedomain.Service
	provider  aggregatedomain.Provider
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("explain.service"),
		cfg:       p.Cfg,
		clock:     p.Clock,
		engine:    p.Engine,
		baselines: p.Baselines,
		seus:      p.SEUs,
		sources:   p.Sources,
		provider:  p.Provider,
	}
}

func (s *Service) Explain(ctx context.Context, seuName, energySource string) (*domain.Explanation, error) {
	model, err := s.baselines.ActiveModel(ctx, seuName, energySource)
	if err != nil {
		return nil, err
	}
	seu, err := s.seus.Resolve(ctx, seuName, energySource)
	if err != nil {
		return nil, err
	}
	source, err := s.sources.GetByCode(ctx, energySource)
	if err != nil {
		return nil, err
	}

	coefficients := model.Coefficients.Data()
	drivers := domain.RankDrivers(model.FeatureNames, coefficients)

	explanation := &domain.Explanation{
		SEU:          seu.Name,
		EnergySource: source.Code,
		ModelVersion: model.Version,
		RSquared:     model.RSquared,
		Accuracy:     domain.AccuracyDescription(model.RSquared),
		Drivers:      drivers,
		Formula:      domain.SimplifiedFormula(source.Unit, model.Intercept, model.FeatureNames, coefficients),
		Summary:      domain.Summarize(seu.Name, source.Code, model.RSquared, drivers),
	}
	explanation.Scenario = s.sampleScenario(ctx, seu, source, model)
	return explanation, nil
}

// sampleScenario predicts a typical day from recent mean driver values. It
// is best effort; explanation still succeeds without it.
func (s *Service) sampleScenario(ctx context.Context, seu *seudomain.Response, source *sourcedomain.Response, model *baselinedomain.BaselineModel) string {
	end := s.clock.Now()
	rows, err := s.provider.DailyAggregates(ctx, aggregatedomain.Request{
		EquipmentIDs: seu.EquipmentIDs,
		EnergySource: source.Code,
		Start:        end.AddDate(0, 0, -scenarioWindowDays),
		End:          end,
	})
	if err != nil || len(rows) == 0 {
		return ""
	}
	if source.TemperatureSensitive {
		rows = aggregatedomain.NormalizeTemperature(rows, s.engine.Current().DegreeDayBaseTempC)
	}

	typical := make(map[string]float64, len(model.FeatureNames))
	for _, feature := range model.FeatureNames {
		sum, count := 0.0, 0
		for _, row := range rows {
			if v, ok := row.Drivers[feature]; ok {
				sum += v
				count++
			}
		}
		if count == 0 {
			return ""
		}
		typical[feature] = sum / float64(count)
	}

	prediction, err := model.Predict(typical)
	if err != nil {
		return ""
	}

	parts := make([]string, 0, len(model.FeatureNames))
	for _, feature := range model.FeatureNames {
		parts = append(parts, fmt.Sprintf("%s at %.0f", feature, typical[feature]))
	}
	sort.Strings(parts)
	return fmt.Sprintf("On a typical recent day, with %s, expected consumption is about %.0f %s.",
		joinSpeakable(parts), prediction.PointEstimate, source.Unit)
}

func (s *Service) ExplainAll(ctx context.Context) ([]domain.Explanation, error) {
	seus, err := s.seus.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu           sync.Mutex
		explanations []domain.Explanation
	)
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.BatchConcurrency)

	for _, seu := range seus {
		group.Go(func() error {
			explanation, err := s.Explain(gctx, seu.Code, seu.EnergySource)
			if err != nil {
				var noModel *baselinedomain.NoActiveModelError
				if errors.As(err, &noModel) {
					return nil
				}
				logger.WithContext(gctx, s.log).Warn("explain failed",
					zap.String("seu", seu.Code),
					zap.String("energy_source", seu.EnergySource),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			explanations = append(explanations, *explanation)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(explanations, func(i, j int) bool {
		if explanations[i].SEU != explanations[j].SEU {
			return explanations[i].SEU < explanations[j].SEU
		}
		return explanations[i].EnergySource < explanations[j].EnergySource
	})
	return explanations, nil
}

func joinSpeakable(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		out := ""
		for i, part := range parts {
			switch i {
			case 0:
				out = part
			case len(parts) - 1:
				out += ", and " + part
			default:
				out += ", " + part
			}
		}
		return out
	}
}
