package config

import (
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ConanSherry4869/voltage-control/core/controller"
	coremetrics "github.com/ConanSherry4869/voltage-control/core/metrics"
	"github.com/ConanSherry4869/voltage-control/infra/logger"
	"github.com/ConanSherry4869/voltage-control/infra/modbus"
	"github.com/ConanSherry4869/voltage-control/infra/mqtt"
)

// Config is the full per-run configuration. The controller section is
// mandatory; the remaining groups have defaults and only the selected
// backend is validated.
type Config struct {
	Controller controller.Config
	Service    ServiceConfig      `json:"service"`
	MQTT       mqtt.Config        `json:"mqtt"`
	Modbus     modbus.Config      `json:"modbus"`
	Metrics    coremetrics.Config `json:"metrics"`
}

// controllerFields enumerates the regulation parameters by their historical
// group and key names. Every entry is required: the loader checks presence
// explicitly instead of dereferencing and crashing on absent keys.
var controllerFields = []struct {
	group string
	key   string
	set   func(*controller.Config, float64)
}{
	{"voltage_settings", "V_ref_upper", func(c *controller.Config, v float64) { c.VRefUpper = v }},
	{"voltage_settings", "V_ref_lower", func(c *controller.Config, v float64) { c.VRefLower = v }},
	{"voltage_settings", "Deadband_upper", func(c *controller.Config, v float64) { c.DeadbandUpper = v }},
	{"voltage_settings", "Deadband_lower", func(c *controller.Config, v float64) { c.DeadbandLower = v }},
	{"voltage_settings", "V_enter_lower", func(c *controller.Config, v float64) { c.VEnterLower = v }},
	{"pi_controller", "Kp_upper", func(c *controller.Config, v float64) { c.KpUpper = v }},
	{"pi_controller", "Ki_upper", func(c *controller.Config, v float64) { c.KiUpper = v }},
	{"pi_controller", "Kp_lower", func(c *controller.Config, v float64) { c.KpLower = v }},
	{"pi_controller", "Ki_lower", func(c *controller.Config, v float64) { c.KiLower = v }},
	{"power_limits", "P_step_max", func(c *controller.Config, v float64) { c.PStepMax = v }},
	{"power_limits", "P_charge_max", func(c *controller.Config, v float64) { c.PChargeMax = v }},
	{"power_limits", "P_discharge_max", func(c *controller.Config, v float64) { c.PDischargeMax = v }},
	{"power_limits", "SOC_max", func(c *controller.Config, v float64) { c.SOCMax = v }},
	{"power_limits", "SOC_min", func(c *controller.Config, v float64) { c.SOCMin = v }},
}

// fieldGroups maps flat CSV keys to their group, shared with the CSV parser.
var fieldGroups = func() map[string]string {
	m := make(map[string]string, len(controllerFields))
	for _, f := range controllerFields {
		m[f.key] = f.group
	}
	return m
}()

// Load reads, validates and defaults the configuration at path. The parser
// is chosen by extension: .json and .yaml/.yml carry the nested group
// layout, .csv the flat key,value one. Environment variables prefixed with
// VC_ override file values, with __ standing in for the group separator.
func Load(path string) (*Config, error) {
	log := logger.New("config")

	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	case ".csv":
		parser = newCSVParser(log)
	default:
		return nil, &Error{Reason: "unsupported config format " + ext}
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, &Error{Reason: "read " + path, Err: err}
	}
	if err := k.Load(env.Provider("VC_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "VC_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, &Error{Reason: "environment overrides", Err: err}
	}

	var cfg Config
	for _, f := range controllerFields {
		keyPath := f.group + "." + f.key
		if !k.Exists(keyPath) {
			return nil, missingField(keyPath)
		}
		f.set(&cfg.Controller, k.Float64(keyPath))
	}
	warnUnknownKeys(k, log)

	if err := cfg.Controller.Validate(); err != nil {
		return nil, &Error{Reason: err.Error()}
	}

	for group, dst := range map[string]interface{}{
		"service": &cfg.Service,
		"mqtt":    &cfg.MQTT,
		"modbus":  &cfg.Modbus,
		"metrics": &cfg.Metrics,
	} {
		if err := k.UnmarshalWithConf(group, dst, koanf.UnmarshalConf{Tag: "json"}); err != nil {
			return nil, &Error{Field: group, Reason: "unmarshal", Err: err}
		}
	}

	cfg.Service.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Modbus.SetDefaults()
	cfg.Metrics.SetDefaults()

	if err := cfg.Service.Validate(); err != nil {
		return nil, &Error{Field: "service", Reason: err.Error()}
	}
	// Backends that are not selected may be absent or half-filled.
	switch cfg.Service.Backend {
	case BackendMQTT:
		if err := cfg.MQTT.Validate(); err != nil {
			return nil, &Error{Field: "mqtt", Reason: err.Error()}
		}
	case BackendModbus:
		if err := cfg.Modbus.Validate(); err != nil {
			return nil, &Error{Field: "modbus", Reason: err.Error()}
		}
	}
	return &cfg, nil
}

// warnUnknownKeys flags keys inside the three regulation groups that the
// loader does not recognise. They are skipped, not fatal, so renamed or
// future fields do not brick older deployments.
func warnUnknownKeys(k *koanf.Koanf, log logger.Logger) {
	known := make(map[string]bool, len(controllerFields))
	for _, f := range controllerFields {
		known[f.group+"."+f.key] = true
	}
	for _, keyPath := range k.Keys() {
		group := strings.SplitN(keyPath, ".", 2)[0]
		switch group {
		case "voltage_settings", "pi_controller", "power_limits":
			if !known[keyPath] {
				log.Warnf("unknown configuration key %s, skipping", keyPath)
			}
		}
	}
}
