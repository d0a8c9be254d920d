package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	qualitydomain "github.com/voltgrid/enbase/internal/quality/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() qualitydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *qualitydomain.DataQualityRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) ListBySEU(ctx context.Context, db *gorm.DB, seuID snowflake.ID, limit int) ([]qualitydomain.DataQualityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []qualitydomain.DataQualityRecord
	err := db.WithContext(ctx).
		Where("seu_id = ?", seuID).
		Order("check_date DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
