package controller

import "github.com/ConanSherry4869/voltage-control/core/model"

// State is the cross-tick controller memory. It is owned by the loop and
// mutated sequentially; each integrator belongs to exactly one regulator
// and is never touched by the other.
type State struct {
	Mode          model.Mode
	IntegralUpper float64 // kW, overvoltage PI accumulator
	IntegralLower float64 // kW, undervoltage PI accumulator
}

// overvoltageStep computes the charge command for one overvoltage tick and
// advances the upper integrator in place.
//
// The integrator accumulates every active tick and is only bounded through
// the output clamp chain; the clamps do not feed back into the integral, so
// it can wind well past what is usable while the regulator saturates. That
// matches the reference controller and is left as-is.
func overvoltageStep(snap model.Snapshot, cfg Config, integral *float64) float64 {
	err := snap.VMeas - (cfg.VRefUpper + cfg.DeadbandUpper)
	if err < 0 {
		err = 0 // back inside the band, one-sided regulator
	}

	*integral += err * cfg.KiUpper
	pCalc := err*cfg.KpUpper + *integral
	if pCalc > cfg.PStepMax {
		pCalc = cfg.PStepMax
	}

	// The step is a request to raise charging from the present operating
	// point, so it stacks on the measured power.
	pCmd := pCalc + snap.PMeas
	if pCmd > snap.PSOCChargeLimit {
		pCmd = snap.PSOCChargeLimit
	}
	if pCmd > cfg.PChargeMax {
		pCmd = cfg.PChargeMax
	}
	if pCmd < 0 {
		pCmd = 0
	}
	return pCmd
}

// undervoltageStep computes the discharge command for one undervoltage tick
// and advances the lower integrator in place. The result is always <= 0.
func undervoltageStep(snap model.Snapshot, cfg Config, integral *float64) float64 {
	err := (cfg.VRefLower - cfg.DeadbandLower) - snap.VMeas
	if err < 0 {
		err = 0
	}

	*integral += err * cfg.KiLower
	pCalc := err*cfg.KpLower + *integral
	if pCalc > cfg.PStepMax {
		pCalc = cfg.PStepMax
	}

	// pCalc is the extra discharge wanted, so it pulls the signed target
	// down from the measured power.
	target := snap.PMeas - pCalc

	capacity := cfg.PDischargeMax
	if snap.PSOCDischargeLimit < capacity {
		capacity = snap.PSOCDischargeLimit
	}
	lower := -capacity

	switch {
	case target > 0:
		return 0 // never answer undervoltage with charging
	case target < lower:
		return lower
	default:
		return target
	}
}
