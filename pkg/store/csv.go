package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
)

// Columns is the required CSV header, in write order. Load accepts any
// column order as long as every name is present.
var Columns = []string{
	"date",
	"device_id",
	"temperature_c",
	"humidity_pct",
	"battery_pct",
	"error_count",
	"status",
}

var (
	ErrNotExist       = errors.New("metrics file does not exist")
	ErrMissingColumns = errors.New("metrics file missing expected columns")
	ErrBadRow         = errors.New("metrics file has malformed row")
)

// CSVStore persists MetricRecords as a flat CSV file. Single-writer:
// concurrent simulator invocations against the same path are not supported.
type CSVStore struct {
	Path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads and parses the whole file, sorted by (device_id, date).
func (s *CSVStore) Load() ([]models.MetricRecord, error) {
	logger := common.GetLoggerWith(common.LoggerNameCSVStore)

	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, s.Path)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty or unreadable header: %v", ErrMissingColumns, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	var missing []string
	for _, name := range Columns {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingColumns, missing)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRow, err)
	}

	records := make([]models.MetricRecord, 0, len(rows))
	for n, row := range rows {
		record, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRow, n+2, err)
		}
		records = append(records, record)
	}

	SortRecords(records)

	logger.Debug("Loaded metrics file",
		zap.String("path", s.Path), zap.Int("records", len(records)))

	return records, nil
}

// Save writes all records sorted by (device_id, date). The write goes to a
// temp file in the same directory followed by a rename, so a concurrent
// reader never observes a truncated file.
func (s *CSVStore) Save(records []models.MetricRecord) error {
	logger := common.GetLoggerWith(common.LoggerNameCSVStore)

	sorted := make([]models.MetricRecord, len(records))
	copy(sorted, records)
	SortRecords(sorted)

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(Columns); err != nil {
		tmp.Close()
		return err
	}
	for _, r := range sorted {
		if err := writer.Write(formatRow(r)); err != nil {
			tmp.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return err
	}

	logger.Info("Saved metrics file",
		zap.String("path", s.Path), zap.Int("records", len(sorted)))

	return nil
}

// SortRecords orders records by (device_id, date), the store's canonical
// order.
func SortRecords(records []models.MetricRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DeviceID != records[j].DeviceID {
			return records[i].DeviceID < records[j].DeviceID
		}
		return records[i].Date.Before(records[j].Date)
	})
}

func parseRow(row []string, colIdx map[string]int) (models.MetricRecord, error) {
	var record models.MetricRecord

	field := func(name string) string { return row[colIdx[name]] }

	date, err := time.Parse(time.DateOnly, field("date"))
	if err != nil {
		return record, fmt.Errorf("date: %v", err)
	}

	deviceID, err := strconv.Atoi(field("device_id"))
	if err != nil {
		return record, fmt.Errorf("device_id: %v", err)
	}
	if deviceID <= 0 {
		return record, fmt.Errorf("device_id: must be positive, got %d", deviceID)
	}

	temperature, err := strconv.ParseFloat(field("temperature_c"), 64)
	if err != nil {
		return record, fmt.Errorf("temperature_c: %v", err)
	}

	humidity, err := strconv.ParseFloat(field("humidity_pct"), 64)
	if err != nil {
		return record, fmt.Errorf("humidity_pct: %v", err)
	}

	battery, err := strconv.ParseFloat(field("battery_pct"), 64)
	if err != nil {
		return record, fmt.Errorf("battery_pct: %v", err)
	}
	if battery < 0 {
		return record, fmt.Errorf("battery_pct: must be >= 0, got %v", battery)
	}

	errorCount, err := strconv.Atoi(field("error_count"))
	if err != nil {
		return record, fmt.Errorf("error_count: %v", err)
	}
	if errorCount < 0 {
		return record, fmt.Errorf("error_count: must be >= 0, got %d", errorCount)
	}

	status, err := models.ParseStatus(field("status"))
	if err != nil {
		return record, fmt.Errorf("status: %v", err)
	}

	record = models.MetricRecord{
		Date:         date,
		DeviceID:     deviceID,
		TemperatureC: temperature,
		HumidityPct:  humidity,
		BatteryPct:   battery,
		ErrorCount:   errorCount,
		Status:       status,
	}
	return record, nil
}

func formatRow(r models.MetricRecord) []string {
	return []string{
		r.Day(),
		strconv.Itoa(r.DeviceID),
		strconv.FormatFloat(r.TemperatureC, 'f', 2, 64),
		strconv.FormatFloat(r.HumidityPct, 'f', 2, 64),
		strconv.FormatFloat(r.BatteryPct, 'f', 1, 64),
		strconv.Itoa(r.ErrorCount),
		string(r.Status),
	}
}
