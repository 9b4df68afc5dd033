package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "voltage_settings": {
    "V_ref_upper": 241.0,
    "V_ref_lower": 198.0,
    "Deadband_upper": 2.0,
    "Deadband_lower": 2.0,
    "V_enter_lower": 160.0
  },
  "pi_controller": {
    "Kp_upper": 1.0,
    "Ki_upper": 0.1,
    "Kp_lower": 1.0,
    "Ki_lower": 0.1
  },
  "power_limits": {
    "P_step_max": 10.0,
    "P_charge_max": 125.0,
    "P_discharge_max": 125.0,
    "SOC_max": 0.95,
    "SOC_min": 0.15
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.json", validJSON))
	require.NoError(t, err)

	assert.Equal(t, 241.0, cfg.Controller.VRefUpper)
	assert.Equal(t, 0.1, cfg.Controller.KiUpper)
	assert.Equal(t, 0.15, cfg.Controller.SOCMin)
	// Service group absent: defaults apply.
	assert.Equal(t, BackendSim, cfg.Service.Backend)
	assert.Equal(t, 1000, cfg.Service.TickPeriodMS)
}

func TestLoadYAML(t *testing.T) {
	content := `
voltage_settings:
  V_ref_upper: 241
  V_ref_lower: 198
  Deadband_upper: 2
  Deadband_lower: 2
  V_enter_lower: 160
pi_controller:
  Kp_upper: 1
  Ki_upper: 0.1
  Kp_lower: 1
  Ki_lower: 0.1
power_limits:
  P_step_max: 10
  P_charge_max: 125
  P_discharge_max: 125
  SOC_max: 0.95
  SOC_min: 0.15
service:
  backend: sim
  tick_period_ms: 200
`
	cfg, err := Load(writeFile(t, "config.yaml", content))
	require.NoError(t, err)
	assert.Equal(t, 198.0, cfg.Controller.VRefLower)
	assert.Equal(t, 200, cfg.Service.TickPeriodMS)
}

func TestLoadCSV(t *testing.T) {
	content := `# regulation parameters
V_ref_upper,241.0
V_ref_lower,198.0
Deadband_upper,2.0
Deadband_lower,2.0
V_enter_lower,160.0
Kp_upper,1.0
Ki_upper,0.1
Kp_lower,1.0
Ki_lower,0.1
P_step_max,10.0
P_charge_max,125.0
P_discharge_max,125.0
SOC_max,0.95
SOC_min,0.15
`
	cfg, err := Load(writeFile(t, "config.csv", content))
	require.NoError(t, err)
	assert.Equal(t, 241.0, cfg.Controller.VRefUpper)
	assert.Equal(t, 125.0, cfg.Controller.PDischargeMax)
}

func TestLoadCSVUnknownAndMalformedLinesSkipped(t *testing.T) {
	content := `V_ref_upper,241.0
V_ref_lower,198.0
Deadband_upper,2.0
Deadband_lower,2.0
V_enter_lower,160.0
Kp_upper,1.0
Ki_upper,0.1
Kp_lower,1.0
Ki_lower,0.1
P_step_max,10.0
P_charge_max,125.0
P_discharge_max,125.0
SOC_max,0.95
SOC_min,0.15
Some_future_knob,42
this line is broken
`
	cfg, err := Load(writeFile(t, "config.csv", content))
	require.NoError(t, err)
	assert.Equal(t, 241.0, cfg.Controller.VRefUpper)
}

func TestLoadMissingFieldNamesIt(t *testing.T) {
	content := `V_ref_upper,241.0
V_ref_lower,198.0
`
	_, err := Load(writeFile(t, "config.csv", content))
	require.Error(t, err)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "voltage_settings.Deadband_upper", cerr.Field)
}

func TestLoadRejectsInvertedReferences(t *testing.T) {
	content := `V_ref_upper,198.0
V_ref_lower,241.0
Deadband_upper,2.0
Deadband_lower,2.0
V_enter_lower,160.0
Kp_upper,1.0
Ki_upper,0.1
Kp_lower,1.0
Ki_lower,0.1
P_step_max,10.0
P_charge_max,125.0
P_discharge_max,125.0
SOC_max,0.95
SOC_min,0.15
`
	_, err := Load(writeFile(t, "config.csv", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v_ref_lower")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "x = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var cerr *Error
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadBackendValidation(t *testing.T) {
	content := validJSON[:len(validJSON)-1] + `,
  "service": {"backend": "mqtt"}
}`
	_, err := Load(writeFile(t, "config.json", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker is required")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VC_voltage_settings__V_ref_upper", "245")
	cfg, err := Load(writeFile(t, "config.json", validJSON))
	require.NoError(t, err)
	assert.Equal(t, 245.0, cfg.Controller.VRefUpper)
}
