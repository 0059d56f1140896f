package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iexplain/iexplain/internal/explanation"
	"github.com/iexplain/iexplain/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <explanation.json>",
	Short: "Render an explanation record as an HTML report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		record, err := explanation.Load(args[0])
		exitOnError(err)

		g := report.NewGenerator(cfg.OutputDir)
		path, err := g.Generate(record)
		exitOnError(err)

		fmt.Printf("Report written to %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
