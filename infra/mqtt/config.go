package mqtt

import "fmt"

// Config defines the connection parameters and topics for the MQTT backend.
// Telemetry arrives on three topics (meter, BMS, PCS) and the power command
// leaves on one.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`

	VoltageTopic string `json:"voltage_topic"`
	SOCTopic     string `json:"soc_topic"`
	PowerTopic   string `json:"power_topic"`
	CommandTopic string `json:"command_topic"`

	QoS byte `json:"qos"`
	// MaxAgeMS marks the assembled snapshot stale when the oldest field is
	// older than this; a stale snapshot is reported as no-data and the tick
	// is skipped.
	MaxAgeMS int `json:"max_age_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "voltage-control"
	}
	if c.VoltageTopic == "" {
		c.VoltageTopic = "ess/meter/voltage"
	}
	if c.SOCTopic == "" {
		c.SOCTopic = "ess/bms/soc"
	}
	if c.PowerTopic == "" {
		c.PowerTopic = "ess/pcs/power"
	}
	if c.CommandTopic == "" {
		c.CommandTopic = "ess/pcs/command"
	}
	if c.MaxAgeMS == 0 {
		c.MaxAgeMS = 5000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}
