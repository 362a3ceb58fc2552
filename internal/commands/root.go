// internal/commands/root.go
package elicit

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elicit",
	Short: "elicit — sequential LLM behavioral-experiment pipeline",
	Long: `elicit runs fixed prompt catalogs against tiered language models,
classifies the responses, and computes the statistical analysis for the
compliance, hiring, and authority experiments.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg.ConfigPath = cfgFile
		applyFlagOverrides(&cfg)
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// applyFlagOverrides lets command-line flags win over file values.
func applyFlagOverrides(cfg *appconfig.Config) {
	if viper.GetBool("debug") {
		cfg.Debug = true
	}
	if v := viper.GetString("logFile"); v != "" {
		cfg.LogFile = v
	}
	if v := viper.GetString("dataDir"); v != "" {
		cfg.DataDir = v
	}
	if v := viper.GetInt("trials"); v > 0 {
		cfg.Trials = v
	}
	if v := viper.GetInt("delayMillis"); v != 0 {
		cfg.DelayMillis = v
	}
	if v := viper.GetInt("timeout"); v > 0 {
		cfg.TimeoutSeconds = v
	}
	if v := viper.GetInt("seed"); v > 0 {
		cfg.Seed = v
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("dataDir", "", "root directory for experiment output")
	rootCmd.PersistentFlags().Int("trials", 0, "trials per cell for replicated experiments (0 = config default)")
	rootCmd.PersistentFlags().Int("delayMillis", 0, "inter-request delay in milliseconds (negative disables)")
	rootCmd.PersistentFlags().Int("timeout", 0, "per-request timeout in seconds (0 = config default)")
	rootCmd.PersistentFlags().Int("seed", 0, "sampling seed forwarded to the service (0 = config default)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("dataDir", rootCmd.PersistentFlags().Lookup("dataDir"))
	_ = viper.BindPFlag("trials", rootCmd.PersistentFlags().Lookup("trials"))
	_ = viper.BindPFlag("delayMillis", rootCmd.PersistentFlags().Lookup("delayMillis"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
