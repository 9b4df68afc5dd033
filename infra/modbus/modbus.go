// Package modbus reads plant telemetry from, and writes power commands to,
// a meter/BMS/PCS gateway over Modbus TCP.
package modbus

import (
	"context"
	"fmt"
	"time"

	"github.com/simonvetter/modbus"

	"github.com/ConanSherry4869/voltage-control/core/model"
	"github.com/ConanSherry4869/voltage-control/infra/logger"
)

// Config defines the Modbus TCP endpoint and the register map of the
// gateway. Registers hold scaled integers; each value is divided by its
// scale on read and multiplied on write.
type Config struct {
	URL    string `json:"url"` // e.g. tcp://10.0.0.5:502
	UnitID uint8  `json:"unit_id"`

	VoltageRegister uint16 `json:"voltage_register"` // input register, V * voltage_scale
	SOCRegister     uint16 `json:"soc_register"`     // input register, fraction * soc_scale
	PowerRegister   uint16 `json:"power_register"`   // input register, int16 kW * power_scale
	CommandRegister uint16 `json:"command_register"` // holding register, int16 kW * power_scale

	VoltageScale float64 `json:"voltage_scale"`
	SOCScale     float64 `json:"soc_scale"`
	PowerScale   float64 `json:"power_scale"`

	TimeoutMS int `json:"timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.VoltageScale == 0 {
		c.VoltageScale = 10
	}
	if c.SOCScale == 0 {
		c.SOCScale = 1000
	}
	if c.PowerScale == 0 {
		c.PowerScale = 10
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 1000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

// registerClient is the subset of the Modbus client the gateway uses; tests
// substitute a fake.
type registerClient interface {
	ReadRegister(addr uint16, regType modbus.RegType) (uint16, error)
	WriteRegister(addr uint16, value uint16) error
}

// Gateway implements telemetry.Source and pcs.CommandSink against a Modbus
// TCP device.
type Gateway struct {
	cli registerClient
	cfg Config
	log logger.Logger
}

// NewGateway connects to the Modbus endpoint described by cfg.
func NewGateway(cfg Config) (*Gateway, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     cfg.URL,
		Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("modbus client: %w", err)
	}
	if err := client.SetUnitId(cfg.UnitID); err != nil {
		return nil, fmt.Errorf("modbus unit id: %w", err)
	}
	if err := client.Open(); err != nil {
		return nil, fmt.Errorf("modbus open: %w", err)
	}
	return &Gateway{cli: client, cfg: cfg, log: logger.New("modbus")}, nil
}

// Read fetches voltage, SOC and power in one pass. The three registers are
// read back to back within a single tick, which is as close to an atomic
// snapshot as the protocol offers.
func (g *Gateway) Read(ctx context.Context) (model.Snapshot, error) {
	rawV, err := g.cli.ReadRegister(g.cfg.VoltageRegister, modbus.INPUT_REGISTER)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read voltage: %w", err)
	}
	rawSOC, err := g.cli.ReadRegister(g.cfg.SOCRegister, modbus.INPUT_REGISTER)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read soc: %w", err)
	}
	rawP, err := g.cli.ReadRegister(g.cfg.PowerRegister, modbus.INPUT_REGISTER)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read power: %w", err)
	}

	return model.Snapshot{
		VMeas:     float64(rawV) / g.cfg.VoltageScale,
		SOC:       float64(rawSOC) / g.cfg.SOCScale,
		PMeas:     float64(int16(rawP)) / g.cfg.PowerScale,
		Timestamp: time.Now(),
	}, nil
}

// Send writes the scaled command to the holding register the PCS executes.
func (g *Gateway) Send(ctx context.Context, cmd model.PowerCommand) error {
	scaled := int16(cmd.PowerKW * g.cfg.PowerScale)
	if err := g.cli.WriteRegister(g.cfg.CommandRegister, uint16(scaled)); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}
