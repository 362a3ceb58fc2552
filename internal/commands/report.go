// internal/commands/report.go
package elicit

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/probeworks/elicit/internal/analyze"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/logging"
	"github.com/probeworks/elicit/internal/report"
	"github.com/probeworks/elicit/internal/util"
)

var (
	reportInputPath  string
	reportOutputPath string
)

// reportCmd implements 'report <experiment>': render the standalone HTML
// dashboard from a stored run.
var reportCmd = &cobra.Command{
	Use:   "report <experiment>",
	Short: "Render an HTML dashboard for a stored experiment run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		experiment, err := catalog.ParseExperiment(args[0])
		if err != nil {
			return err
		}

		records, path, err := loadRecords(experiment, reportInputPath)
		if err != nil {
			return err
		}
		analysis, err := analyze.Run(experiment, records)
		if err != nil {
			return err
		}

		html, err := report.Generate(experiment, records, analysis)
		if err != nil {
			return err
		}

		outPath := reportOutputPath
		if outPath == "" {
			outPath = filepath.Join(filepath.Dir(path), "report.html")
		}
		if err := util.WriteFile(outPath, []byte(html)); err != nil {
			return err
		}
		logging.LogEvent("Report for %s written to %s", experiment, outPath)
		fmt.Printf("Wrote report to %s\n", outPath)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportInputPath, "input", "", "results file to report on (JSON or CSV)")
	reportCmd.Flags().StringVar(&reportOutputPath, "output", "", "path for the HTML report")
	rootCmd.AddCommand(reportCmd)
}
