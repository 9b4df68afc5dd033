package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ConanSherry4869/voltage-control/config"
)

var checkConfigCmd = &cobra.Command{
	Use:   "checkconfig",
	Short: "Validate a configuration file without starting the loop",
	RunE:  runCheckConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	c := cfg.Controller
	fmt.Printf("voltage band: [%g, %g] V, deadbands [%g, %g] V, entry %g V\n",
		c.VRefLower, c.VRefUpper, c.DeadbandLower, c.DeadbandUpper, c.VEnterLower)
	fmt.Printf("gains: upper Kp=%g Ki=%g, lower Kp=%g Ki=%g\n",
		c.KpUpper, c.KiUpper, c.KpLower, c.KiLower)
	fmt.Printf("power: step %g kW, charge %g kW, discharge %g kW, SOC [%g, %g]\n",
		c.PStepMax, c.PChargeMax, c.PDischargeMax, c.SOCMin, c.SOCMax)
	fmt.Printf("service: backend %s, period %s\n", cfg.Service.Backend, cfg.Service.TickPeriod())
	return nil
}
