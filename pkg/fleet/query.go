package fleet

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
)

// All query operations are pure reads over the loader's snapshot. They
// allocate fresh result slices and never mutate the cached records.

func (f *Fleet) records(opts QueryOptions) ([]models.MetricRecord, error) {
	snapshot, err := f.Loader.Load()
	if err != nil {
		return nil, err
	}

	statusSet := make(map[models.Status]bool, len(opts.Statuses))
	for _, s := range opts.Statuses {
		statusSet[s] = true
	}
	search := strings.ToLower(opts.Search)

	matched := make([]models.MetricRecord, 0, len(snapshot))
	for _, r := range snapshot {
		if len(statusSet) > 0 && !statusSet[r.Status] {
			continue
		}
		if opts.DeviceID > 0 && r.DeviceID != opts.DeviceID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.DeviceLabel()), search) {
			continue
		}
		matched = append(matched, r)
		if opts.Limit > 0 && len(matched) == opts.Limit {
			break
		}
	}
	return matched, nil
}

func (f *Fleet) statusCounts(opts QueryOptions) (map[models.Status]int, error) {
	records, err := f.records(opts)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Status]int, len(models.AllStatuses))
	for _, r := range records {
		counts[r.Status]++
	}
	return counts, nil
}

// latestPerDevice picks each device's max-date record, then applies the
// status filter, so a device whose latest status is filtered out drops
// from the result entirely (it does not fall back to an older record).
func (f *Fleet) latestPerDevice(opts QueryOptions) ([]models.MetricRecord, error) {
	snapshot, err := f.Loader.Load()
	if err != nil {
		return nil, err
	}

	latestByDevice := make(map[int]models.MetricRecord)
	for _, r := range snapshot {
		last, seen := latestByDevice[r.DeviceID]
		if !seen || r.Date.After(last.Date) {
			latestByDevice[r.DeviceID] = r
		}
	}

	statusSet := make(map[models.Status]bool, len(opts.Statuses))
	for _, s := range opts.Statuses {
		statusSet[s] = true
	}

	latest := make([]models.MetricRecord, 0, len(latestByDevice))
	for _, r := range latestByDevice {
		if len(statusSet) > 0 && !statusSet[r.Status] {
			continue
		}
		latest = append(latest, r)
	}
	sortByDeviceID(latest)
	return latest, nil
}

func (f *Fleet) summarize(opts QueryOptions) (*Summary, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameFleetCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryQuery),
	)

	latest, err := f.latestPerDevice(opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Devices:         len(latest),
		StatusBreakdown: make(map[models.Status]int, len(models.AllStatuses)),
	}
	for _, r := range latest {
		summary.StatusBreakdown[r.Status]++
	}
	summary.TotalErrors = common.Reducer(latest,
		func(acc int, r models.MetricRecord) int { return acc + r.ErrorCount }, 0)

	if len(latest) > 0 {
		n := float64(len(latest))
		summary.MeanBatteryPct = common.Reducer(latest,
			func(acc float64, r models.MetricRecord) float64 { return acc + r.BatteryPct }, 0.0) / n
		summary.MeanTemperature = common.Reducer(latest,
			func(acc float64, r models.MetricRecord) float64 { return acc + r.TemperatureC }, 0.0) / n
	}

	// last day comes from the whole snapshot, not the filtered subset
	snapshot, err := f.Loader.Load()
	if err != nil {
		return nil, err
	}
	var lastDay time.Time
	for _, r := range snapshot {
		if r.Date.After(lastDay) {
			lastDay = r.Date
		}
	}
	if !lastDay.IsZero() {
		summary.LastDay = lastDay.Format(time.DateOnly)
	}

	logger.Debug("Summarized fleet", zap.Int("devices", summary.Devices))
	return summary, nil
}

func sortByDeviceID(records []models.MetricRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].DeviceID < records[j].DeviceID
	})
}

type IQueryImpl struct {
	fleet *Fleet
}

func (iq *IQueryImpl) Records(opts QueryOptions) ([]models.MetricRecord, error) {
	return iq.fleet.records(opts)
}

func (iq *IQueryImpl) StatusCounts(opts QueryOptions) (map[models.Status]int, error) {
	return iq.fleet.statusCounts(opts)
}

func (iq *IQueryImpl) LatestPerDevice(opts QueryOptions) ([]models.MetricRecord, error) {
	return iq.fleet.latestPerDevice(opts)
}

func (iq *IQueryImpl) Summarize(opts QueryOptions) (*Summary, error) {
	return iq.fleet.summarize(opts)
}

func (f *Fleet) GetIQuery() IQuery {
	return &IQueryImpl{fleet: f}
}
