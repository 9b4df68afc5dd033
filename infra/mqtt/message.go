package mqtt

// Reading is the payload published by the meter, BMS and PCS adapters on
// their telemetry topics.
type Reading struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}

// PowerOrder is the payload published on the command topic each tick.
type PowerOrder struct {
	CommandID string  `json:"command_id"`
	PowerKW   float64 `json:"power_kw"`
	Mode      string  `json:"mode"`
	Timestamp int64   `json:"timestamp"` // unix milliseconds
}
