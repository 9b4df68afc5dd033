// Package app wires the configuration, plant backend, metrics sinks and
// the regulation loop into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ConanSherry4869/voltage-control/config"
	"github.com/ConanSherry4869/voltage-control/core/controller"
	coremetrics "github.com/ConanSherry4869/voltage-control/core/metrics"
	"github.com/ConanSherry4869/voltage-control/core/pcs"
	"github.com/ConanSherry4869/voltage-control/core/telemetry"
	"github.com/ConanSherry4869/voltage-control/infra/logger"
	"github.com/ConanSherry4869/voltage-control/infra/metrics"
	"github.com/ConanSherry4869/voltage-control/infra/modbus"
	"github.com/ConanSherry4869/voltage-control/infra/mqtt"
	"github.com/ConanSherry4869/voltage-control/internal/eventbus"
	"github.com/ConanSherry4869/voltage-control/sim"
)

// Service owns one regulation run: a telemetry source, the control loop, a
// command sink and the metric exporters.
type Service struct {
	cfg     *config.Config
	loop    *controller.Loop
	source  telemetry.Source
	cmdSink pcs.CommandSink
	sink    coremetrics.Sink
	bus     *eventbus.Bus[coremetrics.TickRecord]
	log     logger.Logger
	closers []func()
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	s := &Service{
		cfg:  cfg,
		loop: controller.NewLoop(cfg.Controller, logger.New("controller")),
		bus:  eventbus.New[coremetrics.TickRecord](),
		log:  log,
	}

	switch cfg.Service.Backend {
	case config.BackendSim:
		plant := sim.NewPlant(cfg.Service.SimSeed)
		s.source, s.cmdSink = plant, plant
	case config.BackendMQTT:
		client, err := mqtt.NewClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt backend: %w", err)
		}
		s.source, s.cmdSink = client, client
		s.closers = append(s.closers, client.Close)
	case config.BackendModbus:
		gw, err := modbus.NewGateway(cfg.Modbus)
		if err != nil {
			return nil, fmt.Errorf("modbus backend: %w", err)
		}
		s.source, s.cmdSink = gw, gw
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Service.Backend)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	switch len(sinks) {
	case 0:
		s.sink = coremetrics.NopSink{}
	case 1:
		s.sink = sinks[0]
	default:
		s.sink = metrics.NewMultiSink(sinks...)
	}

	return s, nil
}

// Bus exposes the per-tick event stream for observers such as the simulate
// console reporter.
func (s *Service) Bus() *eventbus.Bus[coremetrics.TickRecord] { return s.bus }

// Run drives the regulation loop at the configured period until the
// context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	s.log.Infof("regulation loop starting, period %s, backend %s",
		s.cfg.Service.TickPeriod(), s.cfg.Service.Backend)

	ticker := time.NewTicker(s.cfg.Service.TickPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infof("regulation loop stopping")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one regulation cycle: read the snapshot, evaluate the control
// law, send the command, record the outcome. A missing snapshot skips the
// cycle without emitting any command.
func (s *Service) tick(ctx context.Context) {
	snap, err := s.source.Read(ctx)
	if err != nil {
		if errors.Is(err, telemetry.ErrNoData) {
			s.log.Warnf("no telemetry, skipping tick: %v", err)
		} else {
			s.log.Errorf("telemetry read: %v", err)
		}
		s.record(coremetrics.TickRecord{Skipped: true, Time: time.Now()})
		return
	}

	cmd, enriched := s.loop.Tick(snap)
	if err := s.cmdSink.Send(ctx, cmd); err != nil {
		s.log.Errorf("send command: %v", err)
	}

	s.log.Infof("V=%.2fV SOC=%.1f%% P=%.2fkW mode=%s P_cmd=%.2fkW",
		enriched.VMeas, enriched.SOC*100, enriched.PMeas, cmd.Mode, cmd.PowerKW)

	s.record(coremetrics.TickRecord{
		Snapshot: enriched,
		Mode:     cmd.Mode,
		PCmdKW:   cmd.PowerKW,
		Time:     cmd.Timestamp,
	})
}

func (s *Service) record(rec coremetrics.TickRecord) {
	if err := s.sink.RecordTick(rec); err != nil {
		s.log.Errorf("record tick: %v", err)
	}
	s.bus.Publish(rec)
}

// Close releases backend resources and closes the event bus.
func (s *Service) Close() error {
	for _, fn := range s.closers {
		fn()
	}
	s.bus.Close()
	return nil
}
