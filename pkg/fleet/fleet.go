package fleet

import (
	"liyu1981.xyz/fleet-dashboard-service/pkg/cache"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
)

// QueryOptions are the UI-selected filters applied to the loaded table.
// Zero values mean "no filtering" for their field.
type QueryOptions struct {
	// Statuses restricts records to the given set; empty means all.
	Statuses []models.Status
	// DeviceID restricts records to one device when > 0.
	DeviceID int
	// Search is a case-insensitive substring match on the device label.
	Search string
	// Limit caps the number of returned rows when > 0.
	Limit int
}

// Summary holds the dashboard's headline aggregates, computed over the
// latest record per device.
type Summary struct {
	Devices         int                   `json:"devices"`
	StatusBreakdown map[models.Status]int `json:"status_breakdown"`
	MeanBatteryPct  float64               `json:"mean_battery_pct"`
	MeanTemperature float64               `json:"mean_temperature_c"`
	TotalErrors     int                   `json:"total_errors"`
	LastDay         string                `json:"last_day"`
}

type IQuery interface {
	Records(opts QueryOptions) ([]models.MetricRecord, error)
	StatusCounts(opts QueryOptions) (map[models.Status]int, error)
	LatestPerDevice(opts QueryOptions) ([]models.MetricRecord, error)
	Summarize(opts QueryOptions) (*Summary, error)
}

// Fleet is the dashboard core: a cache-refreshing loader plus the query
// service reading through it.
type Fleet struct {
	Loader *cache.Loader
	Query  IQuery
}

type ServiceOpts struct {
	Query IQuery
}

func (f *Fleet) WithServices(opts ServiceOpts) *Fleet {
	if opts.Query != nil {
		f.Query = opts.Query
	}
	return f
}
