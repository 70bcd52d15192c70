package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/internal/catalog"
)

var showCmd = &cobra.Command{
	Use:          "show <process-id>",
	Short:        "Show a process and its inputs",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := catalog.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown process %q (see `babysitter list`)", args[0])
		}

		fmt.Printf("%s\n%s\n\n%s\n\nInputs:\n", p.ID, p.Title, p.Summary)
		for _, in := range p.Inputs {
			req := "optional"
			if in.Required {
				req = "required"
			}
			fmt.Printf("  %-20s %-10s %-9s %s", in.Name, in.Type, req, in.Description)
			if in.Default != "" {
				fmt.Printf(" (default %s)", in.Default)
			}
			fmt.Println()
		}
		return nil
	},
}
