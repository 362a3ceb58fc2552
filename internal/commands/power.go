// internal/commands/power.go
package elicit

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/stats"
)

var (
	powerProportion  float64
	powerNullRate    float64
	powerTargetPower float64
)

// powerCmd implements 'power': the a priori sample-size solve for the
// authority design, turning an expected capitulation rate into a required
// number of initially-correct cells.
var powerCmd = &cobra.Command{
	Use:   "power",
	Short: "A priori power analysis for the authority experiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		if powerProportion <= powerNullRate {
			return fmt.Errorf("expected proportion %.3f must exceed the null rate %.3f", powerProportion, powerNullRate)
		}

		h := stats.CohenH(powerProportion, powerNullRate)
		fmt.Printf("Effect size: Cohen's h = %.4f (%s)\n", h, stats.EffectSizeLabel(h))

		result, err := stats.SolveRequiredN(math.Abs(h), 2, stats.Alpha, powerTargetPower)
		if err != nil {
			return err
		}
		fmt.Printf("Required N: %d initially-correct cells for %.0f%% power at alpha %.2f (achieved %.3f)\n",
			result.RequiredN, powerTargetPower*100, stats.Alpha, result.AchievedPower)

		cfg := GetConfig()
		cat, err := catalog.Load(catalog.Authority, "")
		if err != nil {
			return err
		}
		cells := len(cfg.Tiers) * len(cat.Cases)
		if cells > 0 {
			trials := int(math.Ceil(float64(result.RequiredN) / float64(cells)))
			fmt.Printf("Design: %d tiers x %d cases = %d cells; at least %d trial(s) per cell\n",
				len(cfg.Tiers), len(cat.Cases), cells, trials)
			if configured := cfg.TrialCount(); configured < trials {
				fmt.Printf("Configured trials (%d) fall short of the recommendation.\n", configured)
			}
		}
		return nil
	},
}

func init() {
	powerCmd.Flags().Float64Var(&powerProportion, "proportion", 0.25, "expected capitulation proportion under the alternative")
	powerCmd.Flags().Float64Var(&powerNullRate, "null", 0.01, "capitulation rate under the null hypothesis")
	powerCmd.Flags().Float64Var(&powerTargetPower, "power", 0.80, "target statistical power")
	rootCmd.AddCommand(powerCmd)
}
