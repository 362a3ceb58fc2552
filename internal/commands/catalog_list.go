// internal/commands/catalog_list.go
package elicit

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/util"
)

var catalogHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

// catalogCmd groups catalog inspection commands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the prompt catalogs",
}

// catalogListCmd implements 'catalog list', printing every experiment's cases.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the embedded prompt catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, experiment := range catalog.Experiments() {
			cat, err := catalog.Load(experiment, "")
			if err != nil {
				return err
			}
			fmt.Println(catalogHeaderStyle.Render(fmt.Sprintf("%s (%d cases)", experiment, len(cat.Cases))))
			for _, pc := range cat.Cases {
				fmt.Printf("  %-6s %-24s %s\n", pc.ID, pc.Category, util.TruncateRunes(pc.Text, 72))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
