package controller

import (
	"github.com/ConanSherry4869/voltage-control/core/logger"
	"github.com/ConanSherry4869/voltage-control/core/model"
)

// Loop sequences one regulation cycle: attach the SOC power envelope to the
// snapshot, classify the mode, run the matching regulator and produce the
// power command. It owns the Config and the State for the duration of a run.
type Loop struct {
	cfg   Config
	state State
	log   logger.Logger
}

// NewLoop creates a Loop with the controller state at its initial values
// (Normal mode, both integrators zero).
func NewLoop(cfg Config, log logger.Logger) *Loop {
	return &Loop{cfg: cfg, state: State{Mode: model.ModeNormal}, log: log}
}

// State returns a copy of the current controller state.
func (l *Loop) State() State { return l.state }

// Tick runs one regulation cycle against the given snapshot and returns the
// power command to send to the PCS. The snapshot's SOC limit fields are
// overwritten from its SOC, so they can never be stale relative to it.
func (l *Loop) Tick(snap model.Snapshot) (model.PowerCommand, model.Snapshot) {
	snap.PSOCChargeLimit, snap.PSOCDischargeLimit = SOCLimits(snap.SOC, l.cfg)

	l.state.Mode = ClassifyMode(snap.VMeas, l.cfg)

	var pCmd float64
	switch l.state.Mode {
	case model.ModeNormal:
		// No action inside the band. Both integrators are zeroed every
		// normal tick; the reset is idempotent and stops either regulator
		// from re-entering its mode with accumulated error.
		pCmd = 0
		l.state.IntegralUpper = 0
		l.state.IntegralLower = 0
	case model.ModeOvervoltage:
		pCmd = overvoltageStep(snap, l.cfg, &l.state.IntegralUpper)
	case model.ModeUndervoltage:
		pCmd = undervoltageStep(snap, l.cfg, &l.state.IntegralLower)
	default:
		pCmd = 0
	}

	if l.log != nil {
		l.log.Debugw("tick", map[string]any{
			"v_meas":        snap.VMeas,
			"soc":           snap.SOC,
			"p_meas":        snap.PMeas,
			"charge_limit":  snap.PSOCChargeLimit,
			"disch_limit":   snap.PSOCDischargeLimit,
			"mode":          l.state.Mode.String(),
			"p_cmd":         pCmd,
			"integral_up":   l.state.IntegralUpper,
			"integral_down": l.state.IntegralLower,
		})
	}

	return model.PowerCommand{PowerKW: pCmd, Mode: l.state.Mode, Timestamp: snap.Timestamp}, snap
}
