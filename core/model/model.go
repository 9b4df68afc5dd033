package model

import "time"

// Mode identifies the regulation mode the controller is operating in.
type Mode int

const (
	// ModeNormal means the feeder voltage is inside the deadband; no
	// regulation power is commanded.
	ModeNormal Mode = iota
	// ModeOvervoltage means the voltage exceeds the upper band and the
	// converter is asked to absorb power (charge).
	ModeOvervoltage
	// ModeUndervoltage means the voltage is below the lower band and the
	// converter is asked to inject power (discharge).
	ModeUndervoltage
)

// String returns the mode label used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeOvervoltage:
		return "overvoltage"
	case ModeUndervoltage:
		return "undervoltage"
	default:
		return "unknown"
	}
}

// Snapshot carries one consistent set of plant measurements for a control
// tick. VMeas comes from the feeder meter, SOC from the BMS and PMeas from
// the PCS. The two SOC limits are derived fields attached by the SOC power
// limiter before mode dispatch; they are always computed from the SOC in the
// same snapshot.
type Snapshot struct {
	VMeas float64 // feeder voltage, volts
	SOC   float64 // battery state of charge, fraction 0..1
	PMeas float64 // PCS active power, kW, positive = charging

	PSOCChargeLimit    float64 // max charge power allowed by SOC, kW, >= 0
	PSOCDischargeLimit float64 // max discharge power allowed by SOC, kW, >= 0

	Timestamp time.Time
}

// PowerCommand is the per-tick active power order sent to the PCS. PowerKW
// uses the same sign convention as Snapshot.PMeas: positive charges the
// battery, negative discharges it.
type PowerCommand struct {
	PowerKW   float64
	Mode      Mode
	Timestamp time.Time
}
