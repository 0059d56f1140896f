package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "iexplain",
	Short: "Explain whether automated infrastructure fulfilled its declared intents",
	Long: `iexplain reads declared intents (TM Forum intent ontology or plain text),
analyzes system logs for evidence, and produces a structured explanation of
whether each intent was fulfilled, using either a multi-agent reasoning
workflow or a deterministic log analyzer.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".iexplain.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
