package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/config"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   qualitydomain.Repository
	Engine *config.EngineConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   qualitydomain.Repository
	engine *config.EngineConfigHolder
}

func New(p Params) *Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("quality.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		engine: p.Engine,
	}
}

// ScoreAndRecord scores each day of an aggregate window and persists the
// verdict as a DataQualityRecord for the SEU. A day's score is completeness
// clamped to [0,1], zeroed when the energy total sits beyond the configured
// sigma band. Report runs audit every window they read, same as training
// runs.
func (s *Service) ScoreAndRecord(ctx context.Context, seuID snowflake.ID, rows []aggregatedomain.DailyRow) qualitydomain.WindowScore {
	cfg := s.engine.Current()
	score := Score(rows, cfg.ExpectedReadingsPerDay, cfg.OutlierSigma)

	usable := 0
	for _, day := range score.Days {
		if day.Score >= cfg.QualityFloor {
			usable++
		}
	}
	if err := s.record(ctx, seuID, rows, score, usable); err != nil {
		s.log.Warn("data quality record insert failed", zap.Error(err))
	}
	return score
}

// FilterUsable drops days scoring below the quality floor and fails with
// InsufficientQualityDataError when too few days survive. The filtered rows
// and the window score are persisted as a DataQualityRecord for the SEU.
func (s *Service) FilterUsable(ctx context.Context, seuID snowflake.ID, rows []aggregatedomain.DailyRow) ([]aggregatedomain.DailyRow, qualitydomain.WindowScore, error) {
	cfg := s.engine.Current()
	score := Score(rows, cfg.ExpectedReadingsPerDay, cfg.OutlierSigma)

	usable := make([]aggregatedomain.DailyRow, 0, len(rows))
	for i, day := range score.Days {
		if day.Score >= cfg.QualityFloor {
			usable = append(usable, rows[i])
		}
	}

	if err := s.record(ctx, seuID, rows, score, len(usable)); err != nil {
		// Scoring is advisory; a failed audit insert must not block training.
		s.log.Warn("data quality record insert failed", zap.Error(err))
	}

	if len(usable) < cfg.MinTrainingDays {
		return nil, score, &qualitydomain.InsufficientQualityDataError{
			UsableDays:   len(usable),
			TotalDays:    len(rows),
			Minimum:      cfg.MinTrainingDays,
			QualityFloor: cfg.QualityFloor,
		}
	}
	return usable, score, nil
}

func (s *Service) record(ctx context.Context, seuID snowflake.ID, rows []aggregatedomain.DailyRow, score qualitydomain.WindowScore, usableDays int) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return s.repo.Insert(ctx, s.db, &qualitydomain.DataQualityRecord{
		ID:                  s.genID.Generate(),
		SEUID:               seuID,
		CheckDate:           now,
		WindowStart:         rows[0].Date,
		WindowEnd:           rows[len(rows)-1].Date,
		ExpectedDays:        len(rows),
		UsableDays:          usableDays,
		CompletenessPercent: score.CompletenessPercent,
		OutlierCount:        score.OutlierCount,
		CompositeScore:      score.Composite,
		CreatedAt:           now,
	})
}

// Score computes the window quality verdict without touching storage.
func Score(rows []aggregatedomain.DailyRow, expectedPerDay int, sigma float64) qualitydomain.WindowScore {
	if len(rows) == 0 {
		return qualitydomain.WindowScore{}
	}
	if expectedPerDay <= 0 {
		expectedPerDay = 24
	}
	if sigma <= 0 {
		sigma = 3
	}

	mean, stddev := meanStddev(rows)

	days := make([]qualitydomain.DayScore, 0, len(rows))
	totalReadings := 0
	outlierCount := 0
	compositeSum := 0.0

	for _, row := range rows {
		completeness := clamp01(float64(row.ReadingCount) / float64(expectedPerDay))
		outlier := stddev > 0 && math.Abs(row.EnergyTotal-mean) > sigma*stddev
		score := completeness
		if outlier {
			outlierCount++
			score = 0
		}

		days = append(days, qualitydomain.DayScore{
			Date:         row.Date,
			Completeness: completeness,
			Outlier:      outlier,
			Score:        score,
		})
		totalReadings += row.ReadingCount
		compositeSum += score
	}

	expectedTotal := expectedPerDay * len(rows)
	completenessPercent := 0.0
	if expectedTotal > 0 {
		completenessPercent = clamp01(float64(totalReadings)/float64(expectedTotal)) * 100
	}

	return qualitydomain.WindowScore{
		Days:                days,
		CompletenessPercent: completenessPercent,
		OutlierCount:        outlierCount,
		Composite:           compositeSum / float64(len(rows)),
	}
}

func meanStddev(rows []aggregatedomain.DailyRow) (float64, float64) {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.EnergyTotal
	}
	mean, stddev := stat.MeanStdDev(values, nil)
	if math.IsNaN(stddev) {
		// Single-day windows have no spread to measure.
		stddev = 0
	}
	return mean, stddev
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
