package config

import (
	"fmt"
	"time"
)

// Telemetry/command backends the service can run against.
const (
	BackendSim    = "sim"
	BackendMQTT   = "mqtt"
	BackendModbus = "modbus"
)

// ServiceConfig defines how the run loop is driven and which plant backend
// it talks to.
type ServiceConfig struct {
	// Backend selects the telemetry source and command sink: "sim",
	// "mqtt" or "modbus".
	Backend string `json:"backend"`
	// TickPeriodMS is the control period in milliseconds.
	TickPeriodMS int `json:"tick_period_ms"`
	// SimSeed seeds the synthetic plant when the sim backend is active.
	SimSeed uint64 `json:"sim_seed"`
}

// SetDefaults applies sane defaults.
func (c *ServiceConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendSim
	}
	if c.TickPeriodMS == 0 {
		c.TickPeriodMS = 1000
	}
	if c.SimSeed == 0 {
		c.SimSeed = 1
	}
}

// Validate checks mandatory fields.
func (c ServiceConfig) Validate() error {
	switch c.Backend {
	case BackendSim, BackendMQTT, BackendModbus:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.TickPeriodMS <= 0 {
		return fmt.Errorf("tick_period_ms must be positive")
	}
	return nil
}

// TickPeriod returns the control period as a duration.
func (c ServiceConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickPeriodMS) * time.Millisecond
}
