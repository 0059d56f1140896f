package cmd

import (
	"github.com/spf13/cobra"

	"github.com/iexplain/iexplain/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize iexplain configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure iexplain and generates a .iexplain.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
