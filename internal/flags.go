package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddModelFlags adds flags selecting the model backend
func AddModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for generation")
	cmd.Flags().StringP("backend", "b", "", "Model backend (ollama or openai)")
}

// AddOutputFlags adds flags controlling how reports are written
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("title", "t", "", "Report title (defaults to the file name)")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().Bool("raw", false, "Print raw Markdown without terminal rendering")
}

// HandleModelFlags applies --model and --backend to config
func HandleModelFlags(cmd *cobra.Command, config *Config) error {
	if f := cmd.Flags().Lookup("model"); f != nil && f.Changed {
		model, err := cmd.Flags().GetString("model")
		if err != nil {
			return fmt.Errorf("failed to get model flag: %w", err)
		}
		config.Model = model
	}

	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		backend, err := cmd.Flags().GetString("backend")
		if err != nil {
			return fmt.Errorf("failed to get backend flag: %w", err)
		}
		config.Backend = backend
	}

	return config.Validate()
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	config.Verbose = config.Verbose || verbose
	config.Quiet = config.Quiet || quiet
	return nil
}
