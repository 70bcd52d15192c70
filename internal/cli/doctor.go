package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/internal/config"
	"github.com/MaTriXy/babysitter-sub001/internal/run"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check babysitter prerequisites and configuration",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Printf("✅ %s\n", label)
		} else {
			fmt.Printf("❌ %s — %s\n", label, hint)
			allOK = false
		}
	}

	// 1. config
	cfg, cfgErr := config.Load()
	check("config loadable", cfgErr == nil, fmt.Sprintf("fix config: %v", cfgErr))
	if cfgErr == nil {
		validateErr := cfg.Validate()
		check("config valid", validateErr == nil, fmt.Sprintf("%v", validateErr))

		// 2. agent command, only relevant for the script dispatcher
		if cfg.Dispatcher == "script" {
			_, err := exec.LookPath(cfg.Script.Command)
			check(fmt.Sprintf("agent command %q on PATH", cfg.Script.Command), err == nil,
				"install it or switch to `dispatcher: stub` for dry runs")
		}
	}

	// 3. runs directory writable
	probe := filepath.Join(run.BaseDir, ".doctor-probe")
	writeErr := os.MkdirAll(run.BaseDir, 0755)
	if writeErr == nil {
		writeErr = os.WriteFile(probe, []byte("ok"), 0644)
		os.Remove(probe)
	}
	check("runs directory writable", writeErr == nil, fmt.Sprintf("cannot write %s: %v", run.BaseDir, writeErr))

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed. babysitter is ready.")
	} else {
		fmt.Println("Some checks failed. Fix the issues above before running babysitter.")
	}
	return nil
}
