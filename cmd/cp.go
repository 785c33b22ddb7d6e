package cmd

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// cpCmd copies a report to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [transcript file or -]",
	Short: "Copy a study report to the clipboard",
	Example: `  # Analyze a transcript and copy the Markdown report
  vidstudy cp lecture.txt

  # Copy a report from history
  vidstudy cp --id 0190f3c2-7d5e-7a41-b3a8-5b1f0e6f8c21`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var report *internal.Report
		if id, _ := cmd.Flags().GetString("id"); id != "" {
			if app.Store() == nil {
				return internal.ErrHistoryDisabled
			}
			report, err = app.Store().Get(cmd.Context(), id)
		} else {
			if len(args) == 0 {
				return errors.New("a transcript file, - or --id is required")
			}
			title, _ := cmd.Flags().GetString("title")
			report, err = app.AnalyzeFile(cmd.Context(), args[0], title, cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(report.Markdown()); err != nil {
			return fmt.Errorf("copying report to clipboard: %w", err)
		}

		app.UI().Println("Report copied to clipboard")
		return nil
	},
}

func init() {
	internal.AddModelFlags(cpCmd)
	cpCmd.Flags().String("id", "", "Copy a stored report instead of analyzing a transcript")
	cpCmd.Flags().StringP("title", "t", "", "Report title (defaults to the file name)")
	rootCmd.AddCommand(cpCmd)
}
