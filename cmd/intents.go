package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iexplain/iexplain/internal/catalog"
)

var intentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "List the intents in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		entries, err := catalog.List(cfg.IntentsDir)
		exitOnError(err)

		if len(entries) == 0 {
			fmt.Printf("No intents found in %s\n", cfg.IntentsDir)
			return
		}
		fmt.Printf("%-20s %-12s %-16s %s\n", "NAME", "ID", "FORMAT", "DESCRIPTION")
		for _, e := range entries {
			fmt.Printf("%-20s %-12s %-16s %s\n", e.Name, e.Meta.ID, e.Format, e.Meta.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(intentsCmd)
}
