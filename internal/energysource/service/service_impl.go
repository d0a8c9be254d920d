package service

import (
	"context"
	"strings"

	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo sourcedomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo sourcedomain.Repository
}

func New(p Params) sourcedomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("energysource.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]sourcedomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]sourcedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*sourcedomain.Response, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		available, err := s.availableCodes(ctx)
		if err != nil {
			return nil, err
		}
		return nil, &sourcedomain.NotFoundError{Code: code, Available: available}
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) availableCodes(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(items))
	for i := range items {
		codes = append(codes, items[i].Code)
	}
	return codes, nil
}

func toResponse(s *sourcedomain.EnergySource) sourcedomain.Response {
	return sourcedomain.Response{
		ID:                   s.ID.String(),
		Code:                 s.Code,
		Name:                 s.Name,
		Unit:                 s.Unit,
		ConversionFactor:     s.ConversionFactor,
		TemperatureSensitive: s.TemperatureSensitive,
	}
}
