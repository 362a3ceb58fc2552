// internal/commands/run.go
package elicit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/logging"
	"github.com/probeworks/elicit/internal/providers/openai"
	"github.com/probeworks/elicit/internal/results"
	"github.com/probeworks/elicit/internal/runner"
)

var catalogPath string

// runCmd groups the experiment subcommands.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment against the configured model tiers",
}

var runComplianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Run the compliance-pressure experiment (responses are redacted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, catalog.Compliance)
	},
}

var runHiringCmd = &cobra.Command{
	Use:   "hiring",
	Short: "Run the hiring-bias rating experiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, catalog.Hiring)
	},
}

var runAuthorityCmd = &cobra.Command{
	Use:   "authority",
	Short: "Run the two-turn authority-resistance experiment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExperiment(cmd, catalog.Authority)
	},
}

func runExperiment(cmd *cobra.Command, experiment catalog.Experiment) error {
	cfg := GetConfig()

	cat, err := catalog.Load(experiment, catalogPath)
	if err != nil {
		return err
	}

	apiKey, err := appconfig.APIKey()
	if err != nil {
		return err
	}
	provider := openai.New(apiKey, cfg)
	defer provider.Close()

	logging.LogEvent("Starting %s run: %d tiers x %d cases", experiment, len(cfg.Tiers), len(cat.Cases))
	records, err := runner.New(*cfg, provider).Run(cmd.Context(), cat)
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	path, err := runner.Save(*cfg, experiment, records)
	if err != nil {
		return err
	}

	valid, errored := results.Partition(records)
	logging.LogEvent("Run complete: %d records (%d errored) written to %s", len(records), len(errored), path)
	fmt.Printf("Wrote %d records (%d valid, %d errored) to %s\n", len(records), len(valid), len(errored), path)
	return nil
}

func init() {
	runCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "JSON file replacing the embedded prompt catalog")
	runCmd.AddCommand(runComplianceCmd)
	runCmd.AddCommand(runHiringCmd)
	runCmd.AddCommand(runAuthorityCmd)
	rootCmd.AddCommand(runCmd)
}
