package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sourcedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, s *sourcedomain.EnergySource) error {
	return db.WithContext(ctx).Create(s).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*sourcedomain.EnergySource, error) {
	var source sourcedomain.EnergySource
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&source).Error
	if err != nil {
		return nil, err
	}
	if source.ID == 0 {
		return nil, nil
	}
	return &source, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*sourcedomain.EnergySource, error) {
	var source sourcedomain.EnergySource
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&source).Error
	if err != nil {
		return nil, err
	}
	if source.ID == 0 {
		return nil, nil
	}
	return &source, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]sourcedomain.EnergySource, error) {
	var sources []sourcedomain.EnergySource
	err := db.WithContext(ctx).
		Order("code ASC").
		Find(&sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}
