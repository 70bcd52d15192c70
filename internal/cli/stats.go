package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MaTriXy/babysitter-sub001/internal/run"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cost and run statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	runsDir := filepath.Join(run.BaseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No runs found.")
			return nil
		}
		return fmt.Errorf("reading runs dir: %w", err)
	}

	type runStat struct {
		id   string
		meta run.Meta
	}

	var stats []runStat
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "latest" {
			continue
		}
		meta, err := run.ReadMeta(filepath.Join(runsDir, e.Name()))
		if err != nil {
			continue
		}
		stats = append(stats, runStat{id: e.Name(), meta: meta})
	}

	if len(stats) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	// Sort by started_at descending
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].meta.StartedAt.After(stats[j].meta.StartedAt)
	})

	var totalCost float64
	var completed, failed int
	for _, s := range stats {
		totalCost += s.meta.TotalCost
		switch s.meta.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		}
	}

	fmt.Printf("Runs: %d total, %d completed, %d failed\n", len(stats), completed, failed)
	fmt.Printf("Total cost: $%.4f\n", totalCost)
	fmt.Printf("Average cost: $%.4f\n", totalCost/float64(len(stats)))
	fmt.Println()
	fmt.Printf("%-44s %-10s %-12s %-6s %s\n", "Run ID", "Status", "Cost", "Tasks", "Process")
	fmt.Println(strings.Repeat("─", 110))
	for _, s := range stats {
		fmt.Printf("%-44s %-10s $%-11.4f %-6d %s\n",
			s.id, s.meta.Status, s.meta.TotalCost, len(s.meta.Tasks), s.meta.ProcessID)
	}
	return nil
}
