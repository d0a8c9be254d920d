package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/cache"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
)

type sourceStub struct{}

func (s *sourceStub) List(ctx context.Context) ([]sourcedomain.Response, error) {
	return []sourcedomain.Response{{Code: "electricity"}}, nil
}

func (s *sourceStub) GetByCode(ctx context.Context, code string) (*sourcedomain.Response, error) {
	if code != "electricity" {
		return nil, &sourcedomain.NotFoundError{Code: code, Available: []string{"electricity"}}
	}
	return &sourcedomain.Response{ID: "1", Code: "electricity", Name: "Electricity", Unit: "kWh"}, nil
}

type providerStub struct {
	calls   int
	drivers []aggregatedomain.DriverInfo
}

func (p *providerStub) DailyAggregates(ctx context.Context, req aggregatedomain.Request) ([]aggregatedomain.DailyRow, error) {
	return nil, nil
}

func (p *providerStub) ListDrivers(ctx context.Context, energySource string) ([]aggregatedomain.DriverInfo, error) {
	p.calls++
	return p.drivers, nil
}

func setupCatalog(t *testing.T) (catalogdomain.Service, *providerStub) {
	t.Helper()
	provider := &providerStub{drivers: []aggregatedomain.DriverInfo{
		{Name: "production_count", Unit: "units", Coverage: 0.95},
		{Name: "outdoor_temp", Coverage: 0.99},
		{Name: "operating_hours", Unit: "hours", Coverage: 0.9},
		{Name: "  ", Coverage: 0.1},
	}}
	svc := New(Params{
		Log:       zap.NewNop(),
		Provider:  provider,
		SourceSvc: &sourceStub{},
		Drivers:   cache.NewDriverCache(),
	})
	return svc, provider
}

func TestFeaturesForDescribesDrivers(t *testing.T) {
	svc, _ := setupCatalog(t)

	features, err := svc.FeaturesFor(context.Background(), "electricity")
	assert.NoError(t, err)

	// Blank driver names are dropped, the rest come back sorted.
	assert.Len(t, features, 3)
	assert.Equal(t, "operating_hours", features[0].Name)
	assert.Equal(t, "outdoor_temp", features[1].Name)
	assert.Equal(t, "production_count", features[2].Name)

	assert.Equal(t, "production volume", features[2].DisplayName)
	assert.Equal(t, "degrees Celsius", features[1].Unit, "missing units fall back to the phrase table")
	assert.Equal(t, "units", features[2].Unit, "service-provided units win")
}

func TestFeaturesForUsesCache(t *testing.T) {
	svc, provider := setupCatalog(t)

	_, err := svc.FeaturesFor(context.Background(), "electricity")
	assert.NoError(t, err)
	_, err = svc.FeaturesFor(context.Background(), "electricity")
	assert.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "second lookup is served from cache")
}

func TestFeaturesForUnknownSource(t *testing.T) {
	svc, _ := setupCatalog(t)

	_, err := svc.FeaturesFor(context.Background(), "plutonium")

	var notFound *sourcedomain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestValidateAccepts(t *testing.T) {
	svc, _ := setupCatalog(t)

	err := svc.Validate(context.Background(), "electricity",
		[]string{"production_count", " operating_hours ", ""})
	assert.NoError(t, err)
}

func TestValidateSuggestsClosestFeature(t *testing.T) {
	svc, _ := setupCatalog(t)

	err := svc.Validate(context.Background(), "electricity",
		[]string{"production_cout"})

	var unknown *catalogdomain.UnknownFeatureError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"production_cout"}, unknown.Invalid)
	assert.Equal(t, "production_count", unknown.Suggestions[0])
	assert.Contains(t, unknown.Available, "operating_hours")
	assert.Equal(t, "unknown_feature", unknown.ErrorCode())
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("abc", "abc"))
	assert.Equal(t, 1, editDistance("abc", "abd"))
	assert.Equal(t, 1, editDistance("abc", "ab"))
	assert.Equal(t, 3, editDistance("", "abc"))
}
