package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/baseline/repository"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	"github.com/voltgrid/enbase/internal/clock"
	"github.com/voltgrid/enbase/internal/config"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"github.com/voltgrid/enbase/internal/observability/metrics"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	qualityrepository "github.com/voltgrid/enbase/internal/quality/repository"
	qualityservice "github.com/voltgrid/enbase/internal/quality/service"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

type sourceStub struct {
	sources map[string]*sourcedomain.Response
}

func (s *sourceStub) List(ctx context.Context) ([]sourcedomain.Response, error) {
	out := make([]sourcedomain.Response, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, *src)
	}
	return out, nil
}

func (s *sourceStub) GetByCode(ctx context.Context, code string) (*sourcedomain.Response, error) {
	if src, ok := s.sources[code]; ok {
		return src, nil
	}
	return nil, &sourcedomain.NotFoundError{Code: code}
}

type seuStub struct {
	// keyed by energy source code
	seus map[string]*seudomain.Response
}

func (s *seuStub) Create(ctx context.Context, req seudomain.CreateRequest) (*seudomain.Response, error) {
	return nil, seudomain.ErrDuplicateSEU
}

func (s *seuStub) List(ctx context.Context) ([]seudomain.Response, error) {
	out := make([]seudomain.Response, 0, len(s.seus))
	for _, seu := range s.seus {
		out = append(out, *seu)
	}
	return out, nil
}

func (s *seuStub) Resolve(ctx context.Context, name, energySource string) (*seudomain.Response, error) {
	if seu, ok := s.seus[energySource]; ok {
		return seu, nil
	}
	return nil, &seudomain.NotFoundError{Name: name, EnergySource: energySource}
}

type catalogStub struct{}

func (c *catalogStub) FeaturesFor(ctx context.Context, energySource string) ([]catalogdomain.FeatureDescriptor, error) {
	return nil, nil
}

func (c *catalogStub) Validate(ctx context.Context, energySource string, requested []string) error {
	for _, name := range requested {
		if name == "phase_of_moon" {
			return &catalogdomain.UnknownFeatureError{EnergySource: energySource, Invalid: []string{name}}
		}
	}
	return nil
}

type providerStub struct {
	// keyed by energy source code
	rows map[string][]aggregatedomain.DailyRow
}

func (p *providerStub) DailyAggregates(ctx context.Context, req aggregatedomain.Request) ([]aggregatedomain.DailyRow, error) {
	return p.rows[req.EnergySource], nil
}

func (p *providerStub) ListDrivers(ctx context.Context, energySource string) ([]aggregatedomain.DriverInfo, error) {
	return nil, nil
}

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	seus     *seuStub
	sources  *sourceStub
	provider *providerStub
}

func setupTrainer(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(
		&domain.BaselineModel{},
		&domain.BaselineAdjustment{},
		&qualitydomain.DataQualityRecord{},
	)
	assert.NoError(t, err)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)
	log := zap.NewNop()
	holder := config.NewStaticEngineConfigHolder(config.DefaultEngineConfig())

	electricityID := node.Generate()
	gasID := node.Generate()
	sources := &sourceStub{sources: map[string]*sourcedomain.Response{
		"electricity": {ID: electricityID.String(), Code: "electricity", Name: "Electricity", Unit: "kWh"},
		"natural_gas": {ID: gasID.String(), Code: "natural_gas", Name: "Natural gas", Unit: "m3"},
	}}
	seus := &seuStub{seus: map[string]*seudomain.Response{
		"electricity": {
			ID: node.Generate().String(), Code: "compressor-1", Name: "Compressor-1",
			EnergySource: "electricity", EnergySourceID: electricityID.String(),
			EquipmentIDs: []string{"meter-7"},
		},
		"natural_gas": {
			ID: node.Generate().String(), Code: "compressor-1", Name: "Compressor-1",
			EnergySource: "natural_gas", EnergySourceID: gasID.String(),
			EquipmentIDs: []string{"meter-8"},
		},
	}}
	provider := &providerStub{rows: map[string][]aggregatedomain.DailyRow{}}

	quality := qualityservice.New(qualityservice.Params{
		DB:     db,
		Log:    log,
		GenID:  node,
		Repo:   qualityrepository.Provide(),
		Engine: holder,
	})

	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	assert.NoError(t, err)

	svc := New(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		SEUs:     seus,
		Sources:  sources,
		Catalog:  &catalogStub{},
		Provider: provider,
		Quality:  quality,
		Engine:   holder,
		Metrics:  m,
	})

	return &fixture{svc: svc, db: db, node: node, seus: seus, sources: sources, provider: provider}
}

func TestTrainAutoSelectsAndActivates(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 60, 1200, map[string]float64{"production_count": 0.006}, 0.5)

	result, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU:          "Compressor-1",
		EnergySource: "electricity",
	})
	assert.NoError(t, err)

	model := result.Model
	assert.Equal(t, 1, model.Version)
	assert.True(t, model.IsActive)
	assert.Greater(t, model.RSquared, 0.85)
	assert.Equal(t, domain.ConfidenceStandard, model.Confidence)
	assert.Contains(t, model.FeatureNames, "production_count")
	assert.InDelta(t, 0.006, model.Coefficients.Data()["production_count"], 0.001)
	assert.Equal(t, "kWh", result.Unit)
	assert.NotEmpty(t, result.Message)
	assert.Contains(t, result.FormulaReadable, "increases with production volume")

	var adjustments []domain.BaselineAdjustment
	assert.NoError(t, f.db.Find(&adjustments).Error)
	assert.Len(t, adjustments, 1)
	assert.Equal(t, domain.AdjustmentInitial, adjustments[0].AdjustmentType)
	assert.Nil(t, adjustments[0].OldModelID)
}

func TestTrainRejectsLowRSquared(t *testing.T) {
	f := setupTrainer(t)
	// Energy totals uncorrelated with the driver.
	rows := syntheticRows(t, 30, 1000, map[string]float64{"production_count": 0}, 400)
	f.provider.rows["electricity"] = rows

	_, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU:          "Compressor-1",
		EnergySource: "electricity",
		Features:     []string{"production_count"},
	})

	var rejected *domain.LowQualityModelError
	assert.ErrorAs(t, err, &rejected)
	assert.Equal(t, "low_quality_model", rejected.ErrorCode())
	assert.NotEmpty(t, rejected.Suggestion())

	var count int64
	assert.NoError(t, f.db.Model(&domain.BaselineModel{}).Count(&count).Error)
	assert.Zero(t, count, "rejected fits must not be persisted")
}

func TestTrainUnknownFeature(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 30, 1000, map[string]float64{"production_count": 0.5}, 1)

	_, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU:          "Compressor-1",
		EnergySource: "electricity",
		Features:     []string{"phase_of_moon"},
	})

	var unknown *catalogdomain.UnknownFeatureError
	assert.ErrorAs(t, err, &unknown)
}

func TestRetrainIncrementsVersionAtomically(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 60, 1200, map[string]float64{"production_count": 0.006}, 0.5)

	first, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
	})
	assert.NoError(t, err)

	second, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, second.Model.Version)

	var active []domain.BaselineModel
	assert.NoError(t, f.db.Where("is_active = ?", true).Find(&active).Error)
	assert.Len(t, active, 1, "exactly one active model per pair")
	assert.Equal(t, second.Model.ID, active[0].ID)

	var adjustments []domain.BaselineAdjustment
	assert.NoError(t, f.db.Order("id ASC").Find(&adjustments).Error)
	assert.Len(t, adjustments, 2)
	assert.Equal(t, domain.AdjustmentScheduledRetrain, adjustments[1].AdjustmentType)
	if assert.NotNil(t, adjustments[1].OldModelID) {
		assert.Equal(t, first.Model.ID, *adjustments[1].OldModelID)
	}
}

func TestModelsIsolatedPerEnergySource(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 60, 1200, map[string]float64{"production_count": 0.006}, 0.5)
	f.provider.rows["natural_gas"] = syntheticRows(t, 60, 300, map[string]float64{"operating_hours": 4}, 2)

	elec, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
	})
	assert.NoError(t, err)
	gas, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "natural_gas",
	})
	assert.NoError(t, err)

	assert.NotEqual(t, elec.Model.EnergySourceID, gas.Model.EnergySourceID)

	// Both stay active: the pair key keeps one carrier's model from
	// superseding the other's.
	var active []domain.BaselineModel
	assert.NoError(t, f.db.Where("is_active = ?", true).Find(&active).Error)
	assert.Len(t, active, 2)

	got, err := f.svc.ActiveModel(context.Background(), "Compressor-1", "natural_gas")
	assert.NoError(t, err)
	assert.Equal(t, gas.Model.ID, got.ID)
}

func TestPredictRequiresAllFeatures(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 60, 1200, map[string]float64{"production_count": 0.006}, 0.5)

	_, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
		Features: []string{"production_count"},
	})
	assert.NoError(t, err)

	_, err = f.svc.Predict(context.Background(), domain.PredictRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
		Features: map[string]float64{},
	})
	var missing *domain.MissingFeatureError
	assert.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Missing, "production_count")
}

func TestPredictIsDeterministic(t *testing.T) {
	f := setupTrainer(t)
	f.provider.rows["electricity"] = syntheticRows(t, 60, 1200, map[string]float64{"production_count": 0.006}, 0.5)

	_, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
		Features: []string{"production_count"},
	})
	assert.NoError(t, err)

	req := domain.PredictRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
		Features: map[string]float64{"production_count": 1000},
	}
	first, err := f.svc.Predict(context.Background(), req)
	assert.NoError(t, err)
	second, err := f.svc.Predict(context.Background(), req)
	assert.NoError(t, err)

	assert.Equal(t, first.Prediction.PointEstimate, second.Prediction.PointEstimate)
	assert.Less(t, first.Prediction.LowerBound, first.Prediction.PointEstimate)
	assert.Greater(t, first.Prediction.UpperBound, first.Prediction.PointEstimate)
	assert.Equal(t, "kWh", first.Prediction.Unit)
	assert.Contains(t, first.Message, "kWh")
}

func TestTrainInsufficientQualityData(t *testing.T) {
	f := setupTrainer(t)
	rows := syntheticRows(t, 10, 1000, map[string]float64{"production_count": 0.5}, 1)
	// Gut the readings so completeness falls below the floor.
	for i := range rows {
		rows[i].ReadingCount = 5
	}
	f.provider.rows["electricity"] = rows

	_, err := f.svc.Train(context.Background(), domain.TrainRequest{
		SEU: "Compressor-1", EnergySource: "electricity",
	})

	var insufficient *qualitydomain.InsufficientQualityDataError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "insufficient_quality_data", insufficient.ErrorCode())
}

func TestNoActiveModel(t *testing.T) {
	f := setupTrainer(t)

	_, err := f.svc.ActiveModel(context.Background(), "Compressor-1", "electricity")
	var noModel *domain.NoActiveModelError
	assert.ErrorAs(t, err, &noModel)
	assert.Equal(t, "no_active_model", noModel.ErrorCode())
}
