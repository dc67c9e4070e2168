package models

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOK         Status = "OK"
	StatusWarn       Status = "WARN"
	StatusError      Status = "ERROR"
	StatusLowBattery Status = "LOW_BATTERY"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusOK, StatusWarn, StatusError, StatusLowBattery}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOK, StatusWarn, StatusError, StatusLowBattery:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// statusRule is one row of the derivation table. Rule order matters:
// the battery rule dominates the error rules.
type statusRule struct {
	matches func(battery float64, errors int) bool
	status  Status
}

var statusRules = []statusRule{
	{func(battery float64, _ int) bool { return battery < 15 }, StatusLowBattery},
	{func(_ float64, errors int) bool { return errors >= 3 }, StatusError},
	{func(_ float64, errors int) bool { return errors >= 1 }, StatusWarn},
}

// DeriveStatus maps end-of-day battery and error count to a device status.
// Pure and total: every (battery, errors) pair yields exactly one status.
func DeriveStatus(battery float64, errors int) Status {
	for _, rule := range statusRules {
		if rule.matches(battery, errors) {
			return rule.status
		}
	}
	return StatusOK
}

// MetricRecord is one simulated day of one device.
type MetricRecord struct {
	Date         time.Time `json:"date"`
	DeviceID     int       `json:"device_id"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	BatteryPct   float64   `json:"battery_pct"`
	ErrorCount   int       `json:"error_count"`
	Status       Status    `json:"status"`
}

// Day returns the record date as an ISO-8601 calendar day.
func (r MetricRecord) Day() string {
	return r.Date.Format(time.DateOnly)
}

// DeviceLabel is the human-facing device name used by search filters.
func (r MetricRecord) DeviceLabel() string {
	return fmt.Sprintf("device-%d", r.DeviceID)
}
