package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

func TestLoopNormalResetIdempotent(t *testing.T) {
	loop := NewLoop(regulatorConfig(), nil)
	loop.state.IntegralUpper = 12
	loop.state.IntegralLower = -3

	snap := model.Snapshot{VMeas: 220, SOC: 0.5, PMeas: 0}
	for i := 0; i < 2; i++ {
		cmd, _ := loop.Tick(snap)
		assert.Equal(t, model.ModeNormal, cmd.Mode)
		assert.Equal(t, 0.0, cmd.PowerKW)
		assert.Equal(t, 0.0, loop.State().IntegralUpper)
		assert.Equal(t, 0.0, loop.State().IntegralLower)
	}
}

func TestLoopAttachesSOCLimits(t *testing.T) {
	loop := NewLoop(regulatorConfig(), nil)

	// Stale limits on the incoming snapshot must be overwritten from the
	// snapshot's own SOC before dispatch.
	snap := model.Snapshot{VMeas: 220, SOC: 0.5, PSOCChargeLimit: 1, PSOCDischargeLimit: 2}
	_, out := loop.Tick(snap)
	assert.InDelta(t, 125, out.PSOCChargeLimit, 1e-9)
	assert.InDelta(t, 125, out.PSOCDischargeLimit, 1e-9)
}

func TestLoopOvervoltageLeavesLowerIntegralAlone(t *testing.T) {
	loop := NewLoop(regulatorConfig(), nil)
	loop.state.IntegralLower = 5

	cmd, _ := loop.Tick(model.Snapshot{VMeas: 250, SOC: 0.5, PMeas: 0})
	assert.Equal(t, model.ModeOvervoltage, cmd.Mode)
	assert.InDelta(t, 7.7, cmd.PowerKW, 1e-9)
	assert.InDelta(t, 0.7, loop.State().IntegralUpper, 1e-9)
	assert.Equal(t, 5.0, loop.State().IntegralLower)
}

func TestLoopUndervoltageLeavesUpperIntegralAlone(t *testing.T) {
	loop := NewLoop(regulatorConfig(), nil)
	loop.state.IntegralUpper = 5

	cmd, _ := loop.Tick(model.Snapshot{VMeas: 189, SOC: 0.5, PMeas: 0})
	assert.Equal(t, model.ModeUndervoltage, cmd.Mode)
	assert.InDelta(t, -7.7, cmd.PowerKW, 1e-9)
	assert.InDelta(t, 0.7, loop.State().IntegralLower, 1e-9)
	assert.Equal(t, 5.0, loop.State().IntegralUpper)
}

func TestLoopOutageGuardEndToEnd(t *testing.T) {
	// Voltage far below the undervoltage band but also below the entry
	// threshold: the feeder is treated as de-energised and no discharge is
	// commanded.
	loop := NewLoop(regulatorConfig(), nil)

	cmd, _ := loop.Tick(model.Snapshot{VMeas: 150, SOC: 0.5, PMeas: 0})
	assert.Equal(t, model.ModeNormal, cmd.Mode)
	assert.Equal(t, 0.0, cmd.PowerKW)
}

func TestLoopIntegratorAccumulatesAcrossTicks(t *testing.T) {
	loop := NewLoop(regulatorConfig(), nil)
	snap := model.Snapshot{VMeas: 250, SOC: 0.5, PMeas: 0}

	cmd, _ := loop.Tick(snap)
	assert.InDelta(t, 7.7, cmd.PowerKW, 1e-9)

	// Second active tick: integral carried over, no reset inside the mode.
	cmd, _ = loop.Tick(snap)
	assert.InDelta(t, 1.4, loop.State().IntegralUpper, 1e-9)
	assert.InDelta(t, 8.4, cmd.PowerKW, 1e-9)
}

func TestLoopChargeCommandRespectsSOCCeiling(t *testing.T) {
	// High SOC inside the taper shrinks the charge envelope; the command
	// follows the tighter limit.
	cfg := regulatorConfig()
	loop := NewLoop(cfg, nil)

	cmd, out := loop.Tick(model.Snapshot{VMeas: 250, SOC: 0.95, PMeas: 100})
	assert.Equal(t, model.ModeOvervoltage, cmd.Mode)
	assert.Equal(t, 0.0, out.PSOCChargeLimit)
	assert.Equal(t, 0.0, cmd.PowerKW)
}
