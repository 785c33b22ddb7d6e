package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [transcript file or -]",
	Short: "Summarize a transcript without building the full report",
	Example: `  # Summarize a transcript file
  vidstudy summarize lecture.txt

  # Also list the key points
  vidstudy summarize lecture.txt --key-points

  # Use a specific model
  vidstudy summarize lecture.txt --model llama3:70b`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		transcript, err := internal.ReadTranscript(path, cmd.InOrStdin())
		if err != nil {
			return err
		}

		markdown := "## Summary\n\n" + app.Summarize(cmd.Context(), transcript) + "\n"

		if keyPoints, _ := cmd.Flags().GetBool("key-points"); keyPoints {
			markdown += "\n## Key Points\n\n"
			for _, p := range app.Analyzer().Summarizer().KeyPoints(cmd.Context(), transcript) {
				markdown += "- " + p + "\n"
			}
		}

		rendered, err := app.Render(markdown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	internal.AddModelFlags(summarizeCmd)
	summarizeCmd.Flags().Bool("key-points", false, "Also extract up to five key points")
	rootCmd.AddCommand(summarizeCmd)
}
