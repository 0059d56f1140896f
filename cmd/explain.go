package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iexplain/iexplain/internal/config"
	"github.com/iexplain/iexplain/internal/db"
	"github.com/iexplain/iexplain/internal/explainer"
	"github.com/iexplain/iexplain/internal/runs"
)

var (
	explainMode     string
	explainWorkflow string
	explainProvider string
	explainModel    string
)

var explainCmd = &cobra.Command{
	Use:   "explain <intent>",
	Short: "Explain whether one intent was fulfilled",
	Long: `Loads an intent from the intents directory, gathers log evidence, runs the
configured explanation pipeline, and writes an explanation record to the
output directory.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		store, closeDB, err := openRunStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
		}
		if closeDB != nil {
			defer closeDB()
		}

		e := explainer.New(cfg, store)
		result, err := e.Explain(cmd.Context(), args[0])
		exitOnError(err)

		r := result.Record
		fmt.Printf("Intent:  %s - %s\n", r.Intent.ID, r.Intent.Description)
		fmt.Printf("Outcome: %s\n", r.Outcome)
		fmt.Printf("Record:  %s\n", result.OutputPath)
		if verbose && r.Session != nil {
			if r.Session.Workflow != "" {
				fmt.Fprintf(os.Stderr, "Workflow %s finished in %d rounds (%d in / %d out tokens, $%.4f)\n",
					r.Session.Workflow, r.Session.Rounds,
					r.Session.InputTokens, r.Session.OutputTokens, r.Session.EstimatedCost)
			}
			for _, w := range r.Session.Warnings {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
			}
		}
	},
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if explainMode != "" {
		cfg.Mode = config.Mode(explainMode)
	}
	if explainWorkflow != "" {
		cfg.Workflow = config.WorkflowType(explainWorkflow)
	}
	if explainProvider != "" {
		cfg.Provider = config.ProviderType(explainProvider)
	}
	if explainModel != "" {
		cfg.Model = explainModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openRunStore opens the run history database under the data directory.
func openRunStore(cfg *config.Config) (*runs.Store, func(), error) {
	d, err := db.Open(filepath.Join(cfg.DataDir, "iexplain.db"))
	if err != nil {
		return nil, nil, err
	}
	return runs.NewStore(d), func() { d.Close() }, nil
}

func init() {
	explainCmd.Flags().StringVar(&explainMode, "mode", "", "pipeline mode: agents or heuristic")
	explainCmd.Flags().StringVar(&explainWorkflow, "workflow", "", "workflow: sequential, nested, or groupchat")
	explainCmd.Flags().StringVar(&explainProvider, "provider", "", "provider: openai, anthropic, or ollama")
	explainCmd.Flags().StringVar(&explainModel, "model", "", "model name override")
	rootCmd.AddCommand(explainCmd)
}
