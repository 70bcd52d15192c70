package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "babysitter",
	Short: "Declarative multi-phase agent process runner",
	Long:  `babysitter runs declarative development processes: each process is a sequence of phases whose tasks are dispatched to an external coding agent, with human checkpoints between critical phases.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("babysitter %s\n", version.Version)
	},
}
