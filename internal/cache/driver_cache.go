package cache

import (
	"time"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
)

// Catalog validation hits the aggregation service on every train request;
// the driver inventory changes on sensor-deployment timescales, so a short
// TTL is safe.
const defaultDriverTTL = 10 * time.Minute

// DriverCache stores per-source driver listings from the aggregation
// service.
type DriverCache interface {
	GetDrivers(energySource string) ([]aggregatedomain.DriverInfo, bool)
	SetDrivers(energySource string, drivers []aggregatedomain.DriverInfo)
	Invalidate(energySource string)
}

type driverCache struct {
	drivers Cache[string, []aggregatedomain.DriverInfo]
	ttl     time.Duration
}

// NewDriverCache returns an in-memory cache for driver listings.
func NewDriverCache() DriverCache {
	return &driverCache{
		drivers: NewTTLCache[string, []aggregatedomain.DriverInfo](),
		ttl:     defaultDriverTTL,
	}
}

func (c *driverCache) GetDrivers(energySource string) ([]aggregatedomain.DriverInfo, bool) {
	return c.drivers.Get(energySource)
}

func (c *driverCache) SetDrivers(energySource string, drivers []aggregatedomain.DriverInfo) {
	c.drivers.Set(energySource, drivers, c.ttl)
}

func (c *driverCache) Invalidate(energySource string) {
	c.drivers.Delete(energySource)
}
