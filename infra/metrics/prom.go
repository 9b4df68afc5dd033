package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ConanSherry4869/voltage-control/core/metrics"
)

// PromSink exports per-tick regulation state as Prometheus metrics.
type PromSink struct {
	voltage        prometheus.Gauge
	soc            prometheus.Gauge
	power          prometheus.Gauge
	command        prometheus.Gauge
	chargeLimit    prometheus.Gauge
	dischargeLimit prometheus.Gauge
	mode           prometheus.Gauge
	ticks          *prometheus.CounterVec
	skips          prometheus.Counter
}

// NewPromSink registers the regulation metrics on the default Prometheus
// registerer. The /metrics server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeder_voltage_volts",
			Help: "Measured feeder voltage",
		}),
		soc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "battery_soc_ratio",
			Help: "Battery state of charge as a fraction",
		}),
		power: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pcs_power_kw",
			Help: "Measured PCS active power, positive charging",
		}),
		command: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "power_command_kw",
			Help: "Commanded PCS active power, positive charging",
		}),
		chargeLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soc_charge_limit_kw",
			Help: "Charge power ceiling derived from SOC",
		}),
		dischargeLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "soc_discharge_limit_kw",
			Help: "Discharge power ceiling derived from SOC",
		}),
		mode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "control_mode",
			Help: "Current regulation mode: 0 normal, 1 overvoltage, 2 undervoltage",
		}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "control_ticks_total",
			Help: "Completed control ticks by mode",
		}, []string{"mode"}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_skips_total",
			Help: "Ticks skipped because no complete snapshot was available",
		}),
	}

	collectors := []prometheus.Collector{
		s.voltage, s.soc, s.power, s.command,
		s.chargeLimit, s.dischargeLimit, s.mode, s.ticks, s.skips,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordTick implements coremetrics.Sink.
func (s *PromSink) RecordTick(rec coremetrics.TickRecord) error {
	if rec.Skipped {
		s.skips.Inc()
		return nil
	}
	s.voltage.Set(rec.Snapshot.VMeas)
	s.soc.Set(rec.Snapshot.SOC)
	s.power.Set(rec.Snapshot.PMeas)
	s.command.Set(rec.PCmdKW)
	s.chargeLimit.Set(rec.Snapshot.PSOCChargeLimit)
	s.dischargeLimit.Set(rec.Snapshot.PSOCDischargeLimit)
	s.mode.Set(float64(rec.Mode))
	s.ticks.WithLabelValues(rec.Mode.String()).Inc()
	return nil
}
