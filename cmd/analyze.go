package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [transcript file or -]",
	Short: "Generate a full study report from a transcript",
	Example: `  # Summary, study guide, topics and quiz for a transcript
  vidstudy analyze lecture.txt

  # Print the report as JSON
  vidstudy analyze lecture.txt --json

  # Raw Markdown, e.g. to save it
  vidstudy analyze lecture.txt --raw > lecture.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runAnalyze(cmd, path)
	},
}

func init() {
	internal.AddModelFlags(analyzeCmd)
	internal.AddOutputFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
