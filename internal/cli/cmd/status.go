package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sablebrowser/sable/internal/domain/entity"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of the browser state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := app.Ctx()

	var (
		active *entity.Session
		tabs   []*entity.Tab
		recent []*entity.HistoryEntry
		hpage  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = app.Browser.Sessions().ActiveSession(gctx)
		if err != nil {
			return err
		}
		tabs, err = app.Browser.Sessions().GetOrderedTabsForSession(gctx, active.ID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = app.History.GetRecent(gctx, 1)
		return err
	})
	g.Go(func() error {
		var err error
		hpage, err = app.Browser.Homepage(gctx, app.Config.Browsing.Homepage)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	counts := map[entity.TabState]int{}
	for _, tab := range tabs {
		counts[tab.State]++
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "active session\t%s (%s)\n", active.Name, active.ID)
	fmt.Fprintf(w, "tabs\t%d (%d active, %d background, %d frozen, %d discarded)\n",
		len(tabs),
		counts[entity.TabStateActive], counts[entity.TabStateBackground],
		counts[entity.TabStateFrozen], counts[entity.TabStateDiscarded])
	fmt.Fprintf(w, "sessions\t%d\n", len(app.Browser.Sessions().ListSessions(ctx)))
	fmt.Fprintf(w, "restorable closed tabs\t%d\n", app.Browser.ClosedTabCount())
	fmt.Fprintf(w, "homepage\t%s\n", hpage)
	if len(recent) > 0 {
		fmt.Fprintf(w, "last visit\t%s\n", recent[0].URL)
	}
	fmt.Fprintf(w, "database\t%s\n", app.Config.Database.Path)
	return w.Flush()
}
