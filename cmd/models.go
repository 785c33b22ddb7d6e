package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on the configured backend",
	Example: `  # Models installed in the local Ollama
  vidstudy models

  # Models on an OpenAI-compatible server
  vidstudy models --backend openai`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		models, err := app.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("backend %s unreachable: %w", config.Backend, err)
		}

		for _, m := range models {
			marker := "  "
			if m == config.Model {
				marker = "* "
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, m)
		}
		return nil
	},
}

func init() {
	internal.AddModelFlags(modelsCmd)
	rootCmd.AddCommand(modelsCmd)
}
