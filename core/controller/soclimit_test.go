package controller

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func limiterConfig() Config {
	return Config{
		VRefUpper: 241, VRefLower: 198,
		PChargeMax: 125, PDischargeMax: 125,
		SOCMax: 0.95, SOCMin: 0.15,
	}
}

func TestSOCLimitsPlateaus(t *testing.T) {
	cfg := limiterConfig()

	tests := []struct {
		name      string
		soc       float64
		charge    float64
		discharge float64
	}{
		{"mid band full capability", 0.5, 125, 125},
		{"just below charge taper", cfg.SOCMax - TransitionWidth, 125, 125},
		{"at soc max", 0.95, 0, 125},
		{"above soc max", 1.0, 0, 125},
		{"at soc min", 0.15, 125, 0},
		{"below soc min", 0.05, 125, 0},
		{"just above discharge taper", cfg.SOCMin + TransitionWidth, 125, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charge, discharge := SOCLimits(tt.soc, cfg)
			assert.InDelta(t, tt.charge, charge, 1e-9)
			assert.InDelta(t, tt.discharge, discharge, 1e-9)
		})
	}
}

func TestSOCLimitsTaperMidpoint(t *testing.T) {
	cfg := limiterConfig()

	// Halfway through either taper band the raised cosine sits at 0.5.
	charge, _ := SOCLimits(cfg.SOCMax-TransitionWidth/2, cfg)
	assert.InDelta(t, 62.5, charge, 1e-9)

	_, discharge := SOCLimits(cfg.SOCMin+TransitionWidth/2, cfg)
	assert.InDelta(t, 62.5, discharge, 1e-9)
}

func TestSOCLimitsContinuity(t *testing.T) {
	cfg := limiterConfig()

	// Sweep the whole SOC range in small steps and require that neither
	// limit ever jumps by more than the local slope allows. This covers the
	// four band edges where a naive step limiter would be discontinuous.
	const step = 1e-4
	// Max slope of the raised cosine is pi/2 over the band width.
	maxDelta := cfg.PChargeMax * math.Pi / 2 / TransitionWidth * step * 1.01

	prevCharge, prevDischarge := SOCLimits(0, cfg)
	for soc := step; soc <= 1.0+step/2; soc += step {
		charge, discharge := SOCLimits(soc, cfg)
		require.LessOrEqual(t, math.Abs(charge-prevCharge), maxDelta, "charge limit jump at soc=%g", soc)
		require.LessOrEqual(t, math.Abs(discharge-prevDischarge), maxDelta, "discharge limit jump at soc=%g", soc)
		prevCharge, prevDischarge = charge, discharge
	}
}

func TestSOCLimitsNeverNegative(t *testing.T) {
	cfg := limiterConfig()
	for soc := -0.5; soc <= 1.5; soc += 0.01 {
		charge, discharge := SOCLimits(soc, cfg)
		require.GreaterOrEqual(t, charge, 0.0)
		require.GreaterOrEqual(t, discharge, 0.0)
	}
}

func TestSOCLimitsBandEdgesExact(t *testing.T) {
	cfg := limiterConfig()

	charge, _ := SOCLimits(cfg.SOCMax, cfg)
	assert.True(t, scalar.EqualWithinAbs(charge, 0, 1e-12))

	_, discharge := SOCLimits(cfg.SOCMin, cfg)
	assert.True(t, scalar.EqualWithinAbs(discharge, 0, 1e-12))
}
