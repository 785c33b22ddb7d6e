package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rtzll/vidstudy/internal"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated reports",
	Example: `  # Most recent reports
  vidstudy history

  # Show one report
  vidstudy history show 0190f3c2-7d5e-7a41-b3a8-5b1f0e6f8c21

  # Delete a report
  vidstudy history rm 0190f3c2-7d5e-7a41-b3a8-5b1f0e6f8c21`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		reports, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports yet")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tMODEL\tTITLE")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Model, r.Title)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [report id]",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Store() == nil {
			return internal.ErrHistoryDisabled
		}
		report, err := app.Store().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printReport(cmd, app, report)
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm [report id]",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Delete(cmd.Context(), args[0])
	},
}

// openHistory opens the report store without building a backend
func openHistory() (*internal.ReportStore, error) {
	if !config.History {
		return nil, internal.ErrHistoryDisabled
	}
	return internal.OpenReportStore(config.HistoryDB)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of reports to list")
	internal.AddOutputFlags(historyShowCmd)
	historyCmd.AddCommand(historyShowCmd, historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}
