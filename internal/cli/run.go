package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MaTriXy/babysitter-sub001/internal/catalog"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
)

var (
	runSets       []string
	runInputsFile string
	runDispatcher string
	runAutoYes    bool
)

var runCmd = &cobra.Command{
	Use:          "run <process-id>",
	Short:        "Run a process",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := catalog.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown process %q (see `babysitter list`)", args[0])
		}

		inputs, err := collectInputs(runInputsFile, runSets)
		if err != nil {
			return err
		}
		return runProcess(cmd.Context(), p, inputs, runDispatcher, runAutoYes)
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runSets, "set", nil, "Set an input as key=value (repeatable; value parsed as YAML)")
	runCmd.Flags().StringVarP(&runInputsFile, "inputs", "i", "", "Read inputs from a YAML or JSON file")
	runCmd.Flags().StringVar(&runDispatcher, "dispatcher", "", "Override the configured dispatcher (stub|script)")
	runCmd.Flags().BoolVarP(&runAutoYes, "yes", "y", false, "Auto-approve all checkpoints")
}

// collectInputs merges the inputs file with --set overrides.
func collectInputs(file string, sets []string) (process.Inputs, error) {
	inputs := process.Inputs{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading inputs file: %w", err)
		}
		if err := yaml.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("parsing inputs file %s: %w", file, err)
		}
	}

	for _, set := range sets {
		key, rawValue, ok := strings.Cut(set, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", set)
		}
		var value any
		if err := yaml.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}
		inputs[key] = value
	}

	return inputs, nil
}
