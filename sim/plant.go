// Package sim provides a synthetic plant for demonstration runs: a feeder
// whose voltage swings through both regulation bands, a battery whose SOC
// drifts with the voltage, and a PCS that follows the commanded power. It
// stands in for real telemetry and is replaced in production by the MQTT or
// Modbus backends.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ConanSherry4869/voltage-control/core/model"
)

// Plant implements telemetry.Source and pcs.CommandSink against an
// in-process feeder model.
type Plant struct {
	mu   sync.Mutex
	step int

	soc        float64
	lastCmd    float64
	cmdApplied bool

	noise distuv.Uniform
}

// NewPlant creates a plant with the battery at 70% SOC. A fixed seed makes
// demo runs reproducible.
func NewPlant(seed uint64) *Plant {
	return &Plant{
		soc: 0.7,
		noise: distuv.Uniform{
			Min: -0.05,
			Max: 0.05,
			Src: rand.NewSource(seed),
		},
	}
}

// Read advances the plant one step and returns the resulting snapshot.
// The feeder voltage swings 220 +/- 30 V with a period of about 30 ticks,
// crossing both regulation bands; SOC charges under high voltage and
// discharges under low, with a uniform perturbation on top.
func (p *Plant) Read(ctx context.Context) (model.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.step++
	vMeas := 220.0 + 30.0*math.Sin(2*math.Pi*float64(p.step)/30.0)

	switch {
	case vMeas > 235:
		p.soc += 0.02
	case vMeas < 205:
		p.soc -= 0.02
	default:
		p.soc -= 0.005
	}
	p.soc += p.noise.Rand()
	if p.soc > 0.95 {
		p.soc = 0.95
	}
	if p.soc < 0.15 {
		p.soc = 0.15
	}

	// Before the first command the PCS power follows the voltage deviation;
	// afterwards it tracks the last order, the way a real converter would.
	pMeas := 2.0 * (vMeas - 220.0)
	if p.cmdApplied {
		pMeas = p.lastCmd
	}

	return model.Snapshot{
		VMeas:     vMeas,
		SOC:       p.soc,
		PMeas:     pMeas,
		Timestamp: time.Now(),
	}, nil
}

// Send records the order; the next snapshot reports it as the PCS power.
func (p *Plant) Send(ctx context.Context, cmd model.PowerCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastCmd = cmd.PowerKW
	p.cmdApplied = true
	return nil
}
