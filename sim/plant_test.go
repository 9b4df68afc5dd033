package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

func TestPlantVoltageCrossesBothBands(t *testing.T) {
	p := NewPlant(1)

	var sawHigh, sawLow bool
	for i := 0; i < 60; i++ {
		snap, err := p.Read(context.Background())
		require.NoError(t, err)
		if snap.VMeas > 243 {
			sawHigh = true
		}
		if snap.VMeas < 196 {
			sawLow = true
		}
	}
	assert.True(t, sawHigh, "voltage never entered the overvoltage band")
	assert.True(t, sawLow, "voltage never entered the undervoltage band")
}

func TestPlantSOCStaysClamped(t *testing.T) {
	p := NewPlant(2)
	for i := 0; i < 500; i++ {
		snap, err := p.Read(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, snap.SOC, 0.15)
		require.LessOrEqual(t, snap.SOC, 0.95)
	}
}

func TestPlantTracksCommandedPower(t *testing.T) {
	p := NewPlant(3)

	snap, err := p.Read(context.Background())
	require.NoError(t, err)
	// No command yet: power follows the voltage deviation.
	assert.InDelta(t, 2*(snap.VMeas-220), snap.PMeas, 1e-9)

	require.NoError(t, p.Send(context.Background(), model.PowerCommand{PowerKW: -33}))
	snap, err = p.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -33.0, snap.PMeas)
}

func TestPlantDeterministicForSeed(t *testing.T) {
	a, b := NewPlant(7), NewPlant(7)
	for i := 0; i < 20; i++ {
		sa, err := a.Read(context.Background())
		require.NoError(t, err)
		sb, err := b.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sa.SOC, sb.SOC)
		assert.Equal(t, sa.VMeas, sb.VMeas)
	}
}
