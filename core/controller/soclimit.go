package controller

import "math"

// TransitionWidth is the SOC span over which the power envelope tapers
// between full capability and zero around SOCMax and SOCMin.
const TransitionWidth = 0.05

// SOCLimits maps the battery state of charge to the charge and discharge
// power the envelope allows right now, both in kW and never negative.
//
// Outside the taper bands the limits sit at the full PCS ratings. Inside a
// band of width TransitionWidth below SOCMax (charge) or above SOCMin
// (discharge) the limit follows a raised-cosine curve, so commanded power
// approaches the boundary without a step in value or slope. Out-of-range
// SOC falls into the boundary branches and needs no special handling.
func SOCLimits(soc float64, cfg Config) (chargeKW, dischargeKW float64) {
	var chargeFactor float64
	switch {
	case soc >= cfg.SOCMax:
		chargeFactor = 0
	case soc <= cfg.SOCMax-TransitionWidth:
		chargeFactor = 1
	default:
		x := (soc - (cfg.SOCMax - TransitionWidth)) / TransitionWidth
		chargeFactor = 0.5 * (1 + math.Cos(math.Pi*x))
	}
	chargeKW = cfg.PChargeMax * chargeFactor

	var dischargeFactor float64
	switch {
	case soc <= cfg.SOCMin:
		dischargeFactor = 0
	case soc >= cfg.SOCMin+TransitionWidth:
		dischargeFactor = 1
	default:
		x := (soc - cfg.SOCMin) / TransitionWidth
		dischargeFactor = 0.5 * (1 - math.Cos(math.Pi*x))
	}
	dischargeKW = cfg.PDischargeMax * dischargeFactor

	if chargeKW < 0 {
		chargeKW = 0
	}
	if dischargeKW < 0 {
		dischargeKW = 0
	}
	return chargeKW, dischargeKW
}
