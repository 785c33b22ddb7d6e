package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// runAnalyze analyzes the transcript at path (stdin for "" or "-") and prints the report
func runAnalyze(cmd *cobra.Command, path string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	title, _ := cmd.Flags().GetString("title")
	report, err := app.AnalyzeFile(cmd.Context(), path, title, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return printReport(cmd, app, report)
}

// printReport writes report to stdout as JSON, raw Markdown or rendered Markdown
func printReport(cmd *cobra.Command, app *internal.App, report *internal.Report) error {
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	markdown := report.Markdown()
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err := fmt.Fprint(out, markdown)
		return err
	}

	rendered, err := app.Render(markdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		rendered = markdown
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}
