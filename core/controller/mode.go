package controller

import "github.com/ConanSherry4869/voltage-control/core/model"

// ClassifyMode decides the regulation mode from the measured voltage. The
// first matching rule wins:
//
//  1. Overvoltage when the voltage is strictly above the upper reference
//     plus its deadband.
//  2. Undervoltage when the voltage is strictly below the lower reference
//     minus its deadband, provided it is still above VEnterLower. A feeder
//     at or below VEnterLower is classified Normal: discharging into a dead
//     or collapsing feeder is pointless and potentially unsafe.
//  3. Normal otherwise.
//
// The band test is evaluated fresh each tick with no dwell time, so the
// mode can change on any tick the voltage crosses a boundary.
func ClassifyMode(vMeas float64, cfg Config) model.Mode {
	if vMeas > cfg.VRefUpper+cfg.DeadbandUpper {
		return model.ModeOvervoltage
	}
	if vMeas < cfg.VRefLower-cfg.DeadbandLower && vMeas > cfg.VEnterLower {
		return model.ModeUndervoltage
	}
	return model.ModeNormal
}
