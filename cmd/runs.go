package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iexplain/iexplain/internal/runs"
)

var (
	runsLimit  int
	runsIntent string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show explanation run history",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		store, closeDB, err := openRunStore(cfg)
		exitOnError(err)
		defer closeDB()

		var history []*runs.Run
		if runsIntent != "" {
			history, err = store.ForIntent(runsIntent)
		} else {
			history, err = store.List(runsLimit)
		}
		exitOnError(err)

		if len(history) == 0 {
			fmt.Println("No runs recorded yet.")
			return
		}
		fmt.Printf("%-36s %-20s %-10s %-10s %-12s %-16s %s\n",
			"ID", "STARTED", "INTENT", "MODE", "WORKFLOW", "OUTCOME", "RECORD")
		for _, r := range history {
			fmt.Printf("%-36s %-20s %-10s %-10s %-12s %-16s %s\n",
				r.ID, r.StartedAt.Format(time.DateTime), r.IntentID,
				r.Mode, r.Workflow, r.Outcome, r.OutputPath)
		}
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to show")
	runsCmd.Flags().StringVar(&runsIntent, "intent", "", "show runs for one intent id")
	rootCmd.AddCommand(runsCmd)
}
