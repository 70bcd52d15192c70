package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/internal/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available processes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range catalog.All() {
			fmt.Printf("%-42s %s\n", p.ID, p.Title)
		}
	},
}
