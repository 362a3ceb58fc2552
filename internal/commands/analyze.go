// internal/commands/analyze.go
package elicit

import (
	"fmt"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/probeworks/elicit/internal/analyze"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/logging"
	"github.com/probeworks/elicit/internal/results"
	"github.com/probeworks/elicit/internal/util"
)

var analyzeInputPath string

// analyzeCmd implements 'analyze <experiment>': load stored records, compute
// the statistical summary, persist it, and print the styled report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <experiment>",
	Short: "Analyze a stored experiment run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		experiment, err := catalog.ParseExperiment(args[0])
		if err != nil {
			return err
		}

		records, path, err := loadRecords(experiment, analyzeInputPath)
		if err != nil {
			return err
		}

		analysis, err := analyze.Run(experiment, records)
		if err != nil {
			return err
		}
		if DebugEnabled() {
			pp.Println(analysis)
		}

		outPath, err := analyze.Save(path, analysis)
		if err != nil {
			return err
		}
		logging.LogEvent("Analysis for %s written to %s", experiment, outPath)

		analyze.Print(analysis)
		fmt.Printf("Wrote analysis to %s\n", outPath)
		return nil
	},
}

// loadRecords reads the run's records from explicit, or from the experiment's
// default results path when explicit is empty. Returns the path actually read.
func loadRecords(experiment catalog.Experiment, explicit string) ([]results.Record, string, error) {
	path := explicit
	if path == "" {
		path = filepath.Join(GetConfig().DataDirPath(), util.Slugify(string(experiment)), "results.json")
	}
	records, err := results.Load(path)
	if err != nil {
		return nil, "", err
	}
	return records, path, nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInputPath, "input", "", "results file to analyze (JSON or CSV)")
	rootCmd.AddCommand(analyzeCmd)
}
