package service

import (
	"context"
	"sort"
	"strings"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
	"github.com/voltgrid/enbase/internal/cache"
	catalogdomain "github.com/voltgrid/enbase/internal/catalog/domain"
	sourcedomain "github.com/voltgrid/enbase/internal/energysource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Provider  aggregatedomain.Provider
	SourceSvc sourcedomain.Service
	Drivers   cache.DriverCache
}

type Service struct {
	log       *zap.Logger
	provider  aggregatedomain.Provider
	sourceSvc sourcedomain.Service
	drivers   cache.DriverCache
}

func New(p Params) catalogdomain.Service {
	return &Service{
		log:       p.Log.Named("catalog.service"),
		provider:  p.Provider,
		sourceSvc: p.SourceSvc,
		drivers:   p.Drivers,
	}
}

func (s *Service) FeaturesFor(ctx context.Context, energySource string) ([]catalogdomain.FeatureDescriptor, error) {
	source, err := s.sourceSvc.GetByCode(ctx, energySource)
	if err != nil {
		return nil, err
	}

	drivers, ok := s.drivers.GetDrivers(source.Code)
	if !ok {
		drivers, err = s.provider.ListDrivers(ctx, source.Code)
		if err != nil {
			return nil, err
		}
		s.drivers.SetDrivers(source.Code, drivers)
	}

	descriptors := make([]catalogdomain.FeatureDescriptor, 0, len(drivers))
	for _, driver := range drivers {
		name := strings.TrimSpace(driver.Name)
		if name == "" {
			continue
		}
		unit := driver.Unit
		if unit == "" {
			unit = catalogdomain.UnitFor(name)
		}
		descriptors = append(descriptors, catalogdomain.FeatureDescriptor{
			Name:        name,
			DisplayName: catalogdomain.DisplayName(name),
			Unit:        unit,
			Coverage:    driver.Coverage,
		})
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors, nil
}

func (s *Service) Validate(ctx context.Context, energySource string, requested []string) error {
	descriptors, err := s.FeaturesFor(ctx, energySource)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(descriptors))
	available := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		known[d.Name] = struct{}{}
		available = append(available, d.Name)
	}

	var invalid []string
	for _, feature := range requested {
		feature = strings.TrimSpace(feature)
		if feature == "" {
			continue
		}
		if _, ok := known[feature]; !ok {
			invalid = append(invalid, feature)
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	return &catalogdomain.UnknownFeatureError{
		EnergySource: energySource,
		Invalid:      invalid,
		Available:    available,
		Suggestions:  suggest(invalid, available),
	}
}

// suggest ranks available features by edit distance to the first invalid
// name, closest first, capped at three.
func suggest(invalid, available []string) []string {
	if len(invalid) == 0 || len(available) == 0 {
		return nil
	}

	target := invalid[0]
	type candidate struct {
		name     string
		distance int
	}
	candidates := make([]candidate, 0, len(available))
	for _, name := range available {
		candidates = append(candidates, candidate{name: name, distance: editDistance(target, name)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})

	limit := 3
	if len(candidates) < limit {
		limit = len(candidates)
	}
	out := make([]string, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, c.name)
	}
	return out
}

func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	if a < b {
		b = a
	}
	if c < b {
		return c
	}
	return b
}
