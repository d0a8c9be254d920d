package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
	"github.com/voltgrid/enbase/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       seudomain.Repository
	SourceRepo sourcedomain.Repository
	SourceSvc  sourcedomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       seudomain.Repository
	sourceRepo sourcedomain.Repository
	sourceSvc  sourcedomain.Service
}

func New(p Params) seudomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("seu.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		sourceRepo: p.SourceRepo,
		sourceSvc:  p.SourceSvc,
	}
}

func (s *Service) Create(ctx context.Context, req seudomain.CreateRequest) (*seudomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, seudomain.ErrInvalidName
	}

	equipment := make([]string, 0, len(req.EquipmentIDs))
	for _, id := range req.EquipmentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, seudomain.ErrInvalidEquipment
		}
		equipment = append(equipment, id)
	}
	if len(equipment) == 0 {
		return nil, seudomain.ErrEmptyEquipment
	}

	source, err := s.sourceSvc.GetByCode(ctx, req.EnergySource)
	if err != nil {
		return nil, err
	}
	sourceID, err := snowflake.ParseString(source.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seu := &seudomain.SEU{
		ID:             s.genID.Generate(),
		Code:           slug.Make(name),
		Name:           name,
		EnergySourceID: sourceID,
		EquipmentIDs:   datatypes.NewJSONSlice(equipment),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, seu); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, seudomain.ErrDuplicateSEU
		}
		return nil, err
	}

	s.log.Info("seu registered",
		zap.String("seu", seu.Code),
		zap.String("energy_source", source.Code),
		zap.Int("equipment_count", len(equipment)),
	)

	resp := s.toResponse(seu, source)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]seudomain.Response, error) {
	items, err := s.repo.List(ctx, s.db, false)
	if err != nil {
		return nil, err
	}

	sources, err := s.sourcesByID(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]seudomain.Response, 0, len(items))
	for i := range items {
		source := sources[items[i].EnergySourceID]
		resp = append(resp, s.toResponse(&items[i], source))
	}
	return resp, nil
}

func (s *Service) Resolve(ctx context.Context, name, energySource string) (*seudomain.Response, error) {
	source, err := s.sourceSvc.GetByCode(ctx, energySource)
	if err != nil {
		return nil, err
	}
	sourceID, err := snowflake.ParseString(source.ID)
	if err != nil {
		return nil, err
	}

	code := slug.Make(strings.TrimSpace(name))
	seu, err := s.repo.FindByCode(ctx, s.db, code, sourceID)
	if err != nil {
		return nil, err
	}
	if seu == nil {
		available, err := s.registeredCombinations(ctx)
		if err != nil {
			return nil, err
		}
		return nil, &seudomain.NotFoundError{
			Name:         name,
			EnergySource: source.Code,
			Available:    available,
		}
	}

	resp := s.toResponse(seu, source)
	return &resp, nil
}

func (s *Service) registeredCombinations(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx, s.db, true)
	if err != nil {
		return nil, err
	}
	sources, err := s.sourcesByID(ctx)
	if err != nil {
		return nil, err
	}

	combos := make([]string, 0, len(items))
	for i := range items {
		sourceCode := ""
		if source := sources[items[i].EnergySourceID]; source != nil {
			sourceCode = source.Code
		}
		combos = append(combos, fmt.Sprintf("%s (%s)", items[i].Name, sourceCode))
	}
	return combos, nil
}

func (s *Service) sourcesByID(ctx context.Context) (map[snowflake.ID]*sourcedomain.Response, error) {
	items, err := s.sourceRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]*sourcedomain.Response, len(items))
	for i := range items {
		out[items[i].ID] = &sourcedomain.Response{
			ID:                   items[i].ID.String(),
			Code:                 items[i].Code,
			Name:                 items[i].Name,
			Unit:                 items[i].Unit,
			ConversionFactor:     items[i].ConversionFactor,
			TemperatureSensitive: items[i].TemperatureSensitive,
		}
	}
	return out, nil
}

func (s *Service) toResponse(seu *seudomain.SEU, source *sourcedomain.Response) seudomain.Response {
	resp := seudomain.Response{
		ID:           seu.ID.String(),
		Code:         seu.Code,
		Name:         seu.Name,
		EquipmentIDs: seu.EquipmentIDs,
		Active:       seu.Active,
		CreatedAt:    seu.CreatedAt,
	}
	if source != nil {
		resp.EnergySource = source.Code
		resp.EnergySourceID = source.ID
		resp.EnergySourceUnit = source.Unit
	}
	return resp
}
