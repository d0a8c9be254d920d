package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/voltgrid/enbase/internal/baseline/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID) (*domain.BaselineModel, error) {
	var model domain.BaselineModel
	err := db.WithContext(ctx).
		Where("seu_id = ? AND energy_source_id = ? AND is_active = ?", seuID, energySourceID, true).
		Limit(1).
		Find(&model).Error
	if err != nil {
		return nil, err
	}
	if model.ID == 0 {
		return nil, nil
	}
	return &model, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BaselineModel, error) {
	var model domain.BaselineModel
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&model).Error
	if err != nil {
		return nil, err
	}
	if model.ID == 0 {
		return nil, nil
	}
	return &model, nil
}

func (r *repo) ListVersions(ctx context.Context, db *gorm.DB, seuID, energySourceID snowflake.ID) ([]domain.BaselineModel, error) {
	var models []domain.BaselineModel
	err := db.WithContext(ctx).
		Where("seu_id = ? AND energy_source_id = ?", seuID, energySourceID).
		Order("version DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return models, nil
}

func (r *repo) Activate(ctx context.Context, db *gorm.DB, model *domain.BaselineModel, adjustment *domain.BaselineAdjustment) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.BaselineModel
		err := tx.
			Where("seu_id = ? AND energy_source_id = ? AND is_active = ?",
				model.SEUID, model.EnergySourceID, true).
			Limit(1).
			Find(&current).Error
		if err != nil {
			return err
		}

		model.Version = 1
		if current.ID != 0 {
			model.Version = current.Version + 1
			old := current.ID
			adjustment.OldModelID = &old
			if err := tx.Model(&domain.BaselineModel{}).
				Where("id = ?", current.ID).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}

		model.IsActive = true
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		adjustment.NewModelID = model.ID
		return tx.Create(adjustment).Error
	})
}

func (r *repo) ListAdjustments(ctx context.Context, db *gorm.DB, seuID snowflake.ID) ([]domain.BaselineAdjustment, error) {
	var adjustments []domain.BaselineAdjustment
	err := db.WithContext(ctx).
		Where("seu_id = ?", seuID).
		Order("adjusted_at DESC").
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}
