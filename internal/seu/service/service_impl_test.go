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

	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	sourcerepository "github.com/voltgrid/enbase/internal/energysource/repository"
	sourceservice "github.com/voltgrid/enbase/internal/energysource/service"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
	"github.com/voltgrid/enbase/internal/seu/repository"
)

func setupSEU(t *testing.T) seudomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&sourcedomain.EnergySource{}, &seudomain.SEU{}))

	node, err := snowflake.NewNode(4)
	assert.NoError(t, err)
	log := zap.NewNop()

	sourceRepo := sourcerepository.Provide()
	assert.NoError(t, db.Create(&sourcedomain.EnergySource{
		ID: node.Generate(), Code: "electricity", Name: "Electricity", Unit: "kWh",
		ConversionFactor: 1, TemperatureSensitive: true, CreatedAt: time.Now().UTC(),
	}).Error)
	assert.NoError(t, db.Create(&sourcedomain.EnergySource{
		ID: node.Generate(), Code: "natural_gas", Name: "Natural gas", Unit: "m3",
		ConversionFactor: 10.55, TemperatureSensitive: true, CreatedAt: time.Now().UTC(),
	}).Error)

	sources := sourceservice.New(sourceservice.Params{DB: db, Log: log, Repo: sourceRepo})

	return New(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Repo:       repository.Provide(),
		SourceRepo: sourceRepo,
		SourceSvc:  sources,
	})
}

func TestCreateDerivesCode(t *testing.T) {
	svc := setupSEU(t)

	resp, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name:         "Compressor Station 1",
		EnergySource: "electricity",
		EquipmentIDs: []string{"meter-7", " meter-8 "},
	})
	assert.NoError(t, err)

	assert.Equal(t, "compressor-station-1", resp.Code)
	assert.Equal(t, "Compressor Station 1", resp.Name)
	assert.Equal(t, "electricity", resp.EnergySource)
	assert.Equal(t, "kWh", resp.EnergySourceUnit)
	assert.Equal(t, []string{"meter-7", "meter-8"}, resp.EquipmentIDs)
	assert.True(t, resp.Active)
}

func TestCreateValidation(t *testing.T) {
	svc := setupSEU(t)

	_, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "  ", EnergySource: "electricity", EquipmentIDs: []string{"meter-7"},
	})
	assert.ErrorIs(t, err, seudomain.ErrInvalidName)

	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Boiler", EnergySource: "electricity",
	})
	assert.ErrorIs(t, err, seudomain.ErrEmptyEquipment)

	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Boiler", EnergySource: "electricity", EquipmentIDs: []string{"meter-7", " "},
	})
	assert.ErrorIs(t, err, seudomain.ErrInvalidEquipment)

	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Boiler", EnergySource: "antimatter", EquipmentIDs: []string{"meter-7"},
	})
	var notFound *sourcedomain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateDuplicatePerSource(t *testing.T) {
	svc := setupSEU(t)

	_, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor-1", EnergySource: "electricity", EquipmentIDs: []string{"meter-7"},
	})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor-1", EnergySource: "electricity", EquipmentIDs: []string{"meter-9"},
	})
	assert.ErrorIs(t, err, seudomain.ErrDuplicateSEU)

	// The same name on a different carrier is a distinct SEU.
	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor-1", EnergySource: "natural_gas", EquipmentIDs: []string{"meter-9"},
	})
	assert.NoError(t, err)
}

func TestResolveByNameOrCode(t *testing.T) {
	svc := setupSEU(t)

	created, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor Station 1", EnergySource: "electricity", EquipmentIDs: []string{"meter-7"},
	})
	assert.NoError(t, err)

	byName, err := svc.Resolve(context.Background(), "Compressor Station 1", "electricity")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byCode, err := svc.Resolve(context.Background(), "compressor-station-1", "electricity")
	assert.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)
}

func TestResolveUnknownListsAlternatives(t *testing.T) {
	svc := setupSEU(t)

	_, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor-1", EnergySource: "electricity", EquipmentIDs: []string{"meter-7"},
	})
	assert.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "Compressor-1", "natural_gas")

	var notFound *seudomain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "natural_gas", notFound.EnergySource)
	assert.Contains(t, notFound.Available, "Compressor-1 (electricity)")
	assert.Equal(t, "seu_not_found", notFound.ErrorCode())
}

func TestListIncludesSourceDetail(t *testing.T) {
	svc := setupSEU(t)

	_, err := svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Compressor-1", EnergySource: "electricity", EquipmentIDs: []string{"meter-7"},
	})
	assert.NoError(t, err)
	_, err = svc.Create(context.Background(), seudomain.CreateRequest{
		Name: "Boiler-2", EnergySource: "natural_gas", EquipmentIDs: []string{"meter-9"},
	})
	assert.NoError(t, err)

	seus, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, seus, 2)

	bySource := map[string]string{}
	for _, seu := range seus {
		bySource[seu.EnergySource] = seu.EnergySourceUnit
	}
	assert.Equal(t, "kWh", bySource["electricity"])
	assert.Equal(t, "m3", bySource["natural_gas"])
}
