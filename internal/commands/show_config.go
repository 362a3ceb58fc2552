// internal/commands/show_config.go
package elicit

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// showCmd groups inspection commands for the loaded application state.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show application state",
}

// showConfigCmd displays the resolved configuration after file and flag
// merging.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved config settings",
	Run: func(cmd *cobra.Command, args []string) {
		pp.Println(GetConfig())
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
