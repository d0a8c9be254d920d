package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() seudomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, seu *seudomain.SEU) error {
	return db.WithContext(ctx).Create(seu).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, seu *seudomain.SEU) error {
	return db.WithContext(ctx).Save(seu).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*seudomain.SEU, error) {
	var seu seudomain.SEU
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&seu).Error
	if err != nil {
		return nil, err
	}
	if seu.ID == 0 {
		return nil, nil
	}
	return &seu, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string, energySourceID snowflake.ID) (*seudomain.SEU, error) {
	var seu seudomain.SEU
	err := db.WithContext(ctx).
		Where("code = ? AND energy_source_id = ?", code, energySourceID).
		Limit(1).
		Find(&seu).Error
	if err != nil {
		return nil, err
	}
	if seu.ID == 0 {
		return nil, nil
	}
	return &seu, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]seudomain.SEU, error) {
	query := db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var seus []seudomain.SEU
	if err := query.Find(&seus).Error; err != nil {
		return nil, err
	}
	return seus, nil
}
