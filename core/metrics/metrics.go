package metrics

import (
	"time"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

// TickRecord captures the observable outcome of one regulation cycle.
type TickRecord struct {
	Snapshot model.Snapshot
	Mode     model.Mode
	PCmdKW   float64
	Skipped  bool // telemetry was unavailable, no command sent
	Time     time.Time
}

// Sink receives per-tick records for export. Implementations must tolerate
// being called once per control period indefinitely.
type Sink interface {
	RecordTick(rec TickRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordTick implements Sink.
func (NopSink) RecordTick(TickRecord) error { return nil }

// Config selects which metric exporters are active. Both can be enabled at
// once; records then fan out to each.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
