package controller

import "fmt"

// Config holds the regulation tunables. It is loaded once at startup and
// never mutated afterwards; the loop only ever reads it.
type Config struct {
	// Voltage thresholds, volts.
	VRefUpper     float64 `json:"v_ref_upper"`
	VRefLower     float64 `json:"v_ref_lower"`
	DeadbandUpper float64 `json:"deadband_upper"`
	DeadbandLower float64 `json:"deadband_lower"`
	// VEnterLower is the minimum voltage at which undervoltage regulation
	// may engage. Below it the feeder is treated as de-energised and
	// discharging is withheld.
	VEnterLower float64 `json:"v_enter_lower"`

	// PI gains.
	KpUpper float64 `json:"kp_upper"`
	KiUpper float64 `json:"ki_upper"`
	KpLower float64 `json:"kp_lower"`
	KiLower float64 `json:"ki_lower"`

	// Power and SOC envelope, kW and fraction.
	PStepMax      float64 `json:"p_step_max"`
	PChargeMax    float64 `json:"p_charge_max"`
	PDischargeMax float64 `json:"p_discharge_max"`
	SOCMax        float64 `json:"soc_max"`
	SOCMin        float64 `json:"soc_min"`
}

// Validate checks the structural invariants of the regulation parameters.
func (c Config) Validate() error {
	if c.VRefLower >= c.VRefUpper {
		return fmt.Errorf("v_ref_lower (%g) must be below v_ref_upper (%g)", c.VRefLower, c.VRefUpper)
	}
	if c.SOCMin >= c.SOCMax {
		return fmt.Errorf("soc_min (%g) must be below soc_max (%g)", c.SOCMin, c.SOCMax)
	}
	if c.DeadbandUpper < 0 || c.DeadbandLower < 0 {
		return fmt.Errorf("deadbands must be non-negative")
	}
	if c.PStepMax < 0 || c.PChargeMax < 0 || c.PDischargeMax < 0 {
		return fmt.Errorf("power limits must be non-negative")
	}
	return nil
}
