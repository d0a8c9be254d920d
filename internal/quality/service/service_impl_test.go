package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/config"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	"github.com/voltgrid/enbase/internal/quality/repository"
)

func cleanDays(days int, energy float64) []aggregatedomain.DailyRow {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]aggregatedomain.DailyRow, 0, days)
	for i := 0; i < days; i++ {
		rows = append(rows, aggregatedomain.DailyRow{
			Date:         start.AddDate(0, 0, i),
			EnergyTotal:  energy + float64(i%5),
			Drivers:      map[string]float64{"production_count": 900},
			ReadingCount: 24,
		})
	}
	return rows
}

func TestScorePerfectWindow(t *testing.T) {
	score := Score(cleanDays(30, 1000), 24, 3)

	assert.InDelta(t, 100, score.CompletenessPercent, 0.001)
	assert.Zero(t, score.OutlierCount)
	assert.InDelta(t, 1.0, score.Composite, 0.001)
	assert.Len(t, score.Days, 30)
}

func TestScorePenalizesMissingReadings(t *testing.T) {
	rows := cleanDays(10, 1000)
	rows[0].ReadingCount = 12
	rows[1].ReadingCount = 0

	score := Score(rows, 24, 3)

	assert.InDelta(t, 0.5, score.Days[0].Score, 0.001)
	assert.Zero(t, score.Days[1].Score)
	assert.Less(t, score.Composite, 1.0)
}

func TestScoreFlagsOutliers(t *testing.T) {
	rows := cleanDays(30, 1000)
	rows[7].EnergyTotal = 50000

	score := Score(rows, 24, 3)

	assert.Equal(t, 1, score.OutlierCount)
	assert.True(t, score.Days[7].Outlier)
	assert.Zero(t, score.Days[7].Score, "outlier days score zero regardless of completeness")
}

func TestScoreEmptyWindow(t *testing.T) {
	score := Score(nil, 24, 3)
	assert.Empty(t, score.Days)
	assert.Zero(t, score.Composite)
}

func setupQuality(t *testing.T) (*Service, *gorm.DB, snowflake.ID) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&qualitydomain.DataQualityRecord{}))

	node, err := snowflake.NewNode(3)
	assert.NoError(t, err)

	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Engine: config.NewStaticEngineConfigHolder(config.DefaultEngineConfig()),
	})
	return svc, db, node.Generate()
}

func TestFilterUsableKeepsCleanDays(t *testing.T) {
	svc, db, seuID := setupQuality(t)
	rows := cleanDays(30, 1000)
	rows[3].ReadingCount = 2

	usable, score, err := svc.FilterUsable(context.Background(), seuID, rows)
	assert.NoError(t, err)

	assert.Len(t, usable, 29, "low-completeness days are dropped")
	assert.Equal(t, 30, len(score.Days))

	// The scoring run leaves an audit record behind.
	var records []qualitydomain.DataQualityRecord
	assert.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, seuID, records[0].SEUID)
	assert.Equal(t, 30, records[0].ExpectedDays)
	assert.Equal(t, 29, records[0].UsableDays)
}

func TestScoreAndRecordPersistsVerdict(t *testing.T) {
	svc, db, seuID := setupQuality(t)
	rows := cleanDays(31, 1000)
	rows[10].ReadingCount = 0

	score := svc.ScoreAndRecord(context.Background(), seuID, rows)
	assert.InDelta(t, 30.0/31.0, score.Composite, 0.001)

	var records []qualitydomain.DataQualityRecord
	assert.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 1)
	assert.Equal(t, seuID, records[0].SEUID)
	assert.Equal(t, 31, records[0].ExpectedDays)
	assert.Equal(t, 30, records[0].UsableDays, "the empty day falls under the quality floor")
}

func TestFilterUsableRejectsThinWindows(t *testing.T) {
	svc, _, seuID := setupQuality(t)
	rows := cleanDays(10, 1000)
	for i := range rows {
		rows[i].ReadingCount = 3
	}

	_, _, err := svc.FilterUsable(context.Background(), seuID, rows)

	var insufficient *qualitydomain.InsufficientQualityDataError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.UsableDays)
	assert.Equal(t, 10, insufficient.TotalDays)
	assert.Equal(t, "insufficient_quality_data", insufficient.ErrorCode())
	assert.NotEmpty(t, insufficient.Suggestion())
}
