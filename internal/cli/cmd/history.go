package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sablebrowser/sable/internal/domain/entity"
	"github.com/sablebrowser/sable/internal/logging"
)

var (
	historyJSON  bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search and manage browsing history",
	RunE:  runHistoryRecent,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search history by URL or title, most visited first",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		entries, err := app.History.Search(app.Ctx(), args[0], historyLimit)
		if err != nil {
			return err
		}
		return printHistory(entries)
	},
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently visited pages",
	RunE:  runHistoryRecent,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete history",
	Long: `Delete browsing history.

Without flags everything is deleted. --older-than keeps recent
entries, e.g. --older-than 720h for a 30 day window.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		olderThan, err := cmd.Flags().GetDuration("older-than")
		if err != nil {
			return err
		}

		var end *time.Time
		if olderThan > 0 {
			cutoff := time.Now().Add(-olderThan)
			end = &cutoff
		}
		return app.History.ClearRange(app.Ctx(), nil, end)
	},
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
	historyClearCmd.Flags().Duration("older-than", 0, "only delete entries older than this duration")
	historyCmd.AddCommand(historySearchCmd, historyRecentCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryRecent(_ *cobra.Command, _ []string) error {
	entries, err := app.History.GetRecent(app.Ctx(), historyLimit)
	if err != nil {
		return err
	}
	return printHistory(entries)
}

func printHistory(entries []*entity.HistoryEntry) error {
	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VISITS\tLAST VISITED\tTITLE\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			e.VisitCount, e.LastVisited.Format("2006-01-02 15:04"), e.Title, logging.TruncateURL(e.URL, 60))
	}
	return w.Flush()
}
