package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/voltgrid/enbase/internal/performance/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindCurrent(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID, period string) (*domain.PerformanceReport, error) {
	var report domain.PerformanceReport
	err := db.WithContext(ctx).
		Where("seu_id = ? AND energy_source_id = ? AND period = ? AND superseded_at IS NULL",
			seuID, energySourceID, period).
		Limit(1).
		Find(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == 0 {
		return nil, nil
	}
	return &report, nil
}

func (r *repo) InsertSuperseding(ctx context.Context, db *gorm.DB, report *domain.PerformanceReport) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		err := tx.Model(&domain.PerformanceReport{}).
			Where("seu_id = ? AND energy_source_id = ? AND period = ? AND superseded_at IS NULL",
				report.SEUID, report.EnergySourceID, report.Period).
			Update("superseded_at", now).Error
		if err != nil {
			return err
		}
		return tx.Create(report).Error
	})
}

func (r *repo) List(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID, limit int) ([]domain.PerformanceReport, error) {
	var reports []domain.PerformanceReport
	q := db.WithContext(ctx).
		Where("seu_id = ? AND energy_source_id = ? AND superseded_at IS NULL", seuID, energySourceID).
		Order("period_start DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
