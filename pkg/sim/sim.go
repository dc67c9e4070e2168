package sim

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
	"liyu1981.xyz/fleet-dashboard-service/pkg/store"
)

// Simulator generates synthetic per-device daily metrics and writes them
// through the store. Rng and Now are injectable so tests can fix the seed
// and the calendar day; the default simulator is time-seeded and therefore
// not reproducible across runs.
type Simulator struct {
	Store *store.CSVStore
	Rng   *rand.Rand
	Now   func() time.Time
}

func New(st *store.CSVStore) *Simulator {
	seed := uint64(time.Now().UnixNano())
	return &Simulator{
		Store: st,
		Rng:   rand.New(rand.NewPCG(seed, seed)),
		Now:   time.Now,
	}
}

func (s *Simulator) today() time.Time {
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateInitialHistory produces days*devices records spanning
// [today-days, today-1], oldest day first. Each device starts from a random
// battery in [60,100] and drains a little every day, first day included.
func (s *Simulator) GenerateInitialHistory(days int, devices int) []models.MetricRecord {
	today := s.today()

	battery := make([]float64, devices)
	for i := range devices {
		battery[i] = float64(60 + s.Rng.IntN(41))
	}

	records := make([]models.MetricRecord, 0, days*devices)
	for d := days; d > 0; d-- {
		day := today.AddDate(0, 0, -d)
		for dev := 1; dev <= devices; dev++ {
			drain := 0.5 + s.Rng.Float64()*2.0
			battery[dev-1] = math.Max(0, battery[dev-1]-drain)
			errors := s.poisson(0.4)
			records = append(records, s.newRecord(day, dev, battery[dev-1], errors))
		}
	}
	return records
}

// EnsureHistory backfills and saves initial history if the store file does
// not exist yet. Returns true when a backfill happened.
func (s *Simulator) EnsureHistory(days int, devices int) (bool, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameSimulator,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryBackfill),
	)

	if s.Store.Exists() {
		logger.Info("Found existing metrics file", zap.String("path", s.Store.Path))
		return false, nil
	}

	logger.Info("Generating initial history",
		zap.Int("days", days), zap.Int("devices", devices))

	records := s.GenerateInitialHistory(days, devices)
	if err := s.Store.Save(records); err != nil {
		return false, err
	}

	logger.Info("Created metrics file",
		zap.String("path", s.Store.Path), zap.Int("records", len(records)))
	return true, nil
}

// AppendToday writes one record per device for the current day. Each
// device continues draining from its last known battery level; unseen
// devices start from a fresh random level in [65,100]. Any rows already
// present for today are replaced, so repeat invocation on the same day
// is idempotent.
func (s *Simulator) AppendToday(devices int) error {
	logger := common.GetLoggerWith(
		common.LoggerNameSimulator,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAppend),
	)

	today := s.today()

	var existing []models.MetricRecord
	if s.Store.Exists() {
		var err error
		if existing, err = s.Store.Load(); err != nil {
			return err
		}
	}

	// Records are sorted by (device_id, date), so the last record seen per
	// device is its most recent one.
	lastBattery := make(map[int]float64)
	for _, r := range existing {
		lastBattery[r.DeviceID] = r.BatteryPct
	}

	kept := make([]models.MetricRecord, 0, len(existing)+devices)
	for _, r := range existing {
		if !r.Date.Equal(today) {
			kept = append(kept, r)
		}
	}

	for dev := 1; dev <= devices; dev++ {
		prev, seen := lastBattery[dev]
		if !seen {
			prev = float64(65 + s.Rng.IntN(36))
		}
		drain := 0.8 + s.Rng.Float64()*2.2
		battery := math.Max(0, prev-drain)
		errors := s.poisson(0.5)
		kept = append(kept, s.newRecord(today, dev, battery, errors))
	}

	if err := s.Store.Save(kept); err != nil {
		return err
	}

	logger.Info("Appended today's rows",
		zap.String("day", today.Format(time.DateOnly)),
		zap.Int("devices", devices),
		zap.String("path", s.Store.Path))
	return nil
}

func (s *Simulator) newRecord(day time.Time, deviceID int, battery float64, errors int) models.MetricRecord {
	temperature := s.Rng.NormFloat64()*3 + 25
	humidity := s.Rng.NormFloat64()*5 + 45
	battery = round1(battery)
	return models.MetricRecord{
		Date:         day,
		DeviceID:     deviceID,
		TemperatureC: round2(temperature),
		HumidityPct:  round2(humidity),
		BatteryPct:   battery,
		ErrorCount:   errors,
		Status:       models.DeriveStatus(battery, errors),
	}
}

// poisson samples by Knuth's inversion method; fine for the small lambdas
// used here.
func (s *Simulator) poisson(lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= s.Rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
