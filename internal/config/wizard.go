package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .iexplain.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to iexplain! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select reasoning provider",
		Items: []string{"openai", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model name.
	modelPrompt := promptui.Prompt{
		Label:   "Model name",
		Default: defaultModelFor(cfg.Provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	cfg.Model = model

	// 3. Workflow strategy.
	workflowPrompt := promptui.Select{
		Label: "Select workflow strategy",
		Items: []string{
			"sequential - strict three-stage pipeline (deterministic)",
			"nested     - sub-analysis triggered after intent parsing",
			"groupchat  - free-form multi-role collaboration",
		},
	}
	workflowIdx, _, err := workflowPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("workflow selection: %w", err)
	}
	workflows := []WorkflowType{WorkflowSequential, WorkflowNested, WorkflowGroupChat}
	cfg.Workflow = workflows[workflowIdx]

	// 4. Intents directory.
	intentsPrompt := promptui.Prompt{
		Label:   "Intents directory",
		Default: cfg.IntentsDir,
	}
	intentsDir, err := intentsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("intents directory: %w", err)
	}
	cfg.IntentsDir = intentsDir

	// 5. Logs directory.
	logsPrompt := promptui.Prompt{
		Label:   "Logs directory",
		Default: cfg.LogsDir,
	}
	logsDir, err := logsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("logs directory: %w", err)
	}
	cfg.LogsDir = logsDir

	// Warn early if the API key is missing.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Fprintf(os.Stderr, "Warning: %s is not set; `iexplain explain` will fail in agents mode\n", envVar)
	}

	if err := cfg.Save(".iexplain.yml"); err != nil {
		return nil, err
	}
	fmt.Println("\nConfiguration saved to .iexplain.yml")

	return cfg, nil
}

func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderOllama:
		return "llama3.2:1b"
	default:
		return "gpt-4o-mini"
	}
}
