package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ConanSherry4869/voltage-control/app"
	"github.com/ConanSherry4869/voltage-control/config"
)

var simPeriodMS int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the regulation loop against the synthetic plant",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simPeriodMS, "period-ms", 1000, "control period in milliseconds")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Backend = config.BackendSim
	cfg.Service.TickPeriodMS = simPeriodMS

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	// Console reporter: one line per cycle, like the original demo output.
	events := svc.Bus().Subscribe()
	go func() {
		for rec := range events {
			if rec.Skipped {
				fmt.Println("tick skipped: no telemetry")
				continue
			}
			fmt.Printf("V=%.2fV SOC=%.1f%% P=%.2fkW charge_lim=%.2fkW disch_lim=%.2fkW mode=%s P_cmd=%.2fkW\n",
				rec.Snapshot.VMeas, rec.Snapshot.SOC*100, rec.Snapshot.PMeas,
				rec.Snapshot.PSOCChargeLimit, rec.Snapshot.PSOCDischargeLimit,
				rec.Mode, rec.PCmdKW)
		}
	}()

	return svc.Run(ctx)
}
