package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sablebrowser/sable/internal/logging"
)

var (
	tabsJSON    bool
	tabsSession string
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "Manage tabs",
	Long: `List, open, close, move and restore tabs.

Commands default to the active session; pass --session to target
another one.`,
	RunE: runTabsList,
}

var tabsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tabs in order",
	RunE:  runTabsList,
}

var tabsOpenCmd = &cobra.Command{
	Use:   "open <url-or-query>",
	Short: "Open a tab and focus it",
	Long:  `Open a tab. Input that does not look like a URL is sent to the configured search engine.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		sessionID, err := targetSession()
		if err != nil {
			return err
		}
		tab, err := app.Browser.CreateTabInSession(app.Ctx(), windowID(), sessionID, app.Browser.ResolveOmnibox(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("opened tab %s\n", tab.ID)
		return nil
	},
}

var tabsCloseCmd = &cobra.Command{
	Use:   "close <tab-id>",
	Short: "Close a tab (restorable with 'tabs restore')",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		sessionID, err := targetSession()
		if err != nil {
			return err
		}
		return app.Browser.CloseTabInSession(app.Ctx(), windowID(), sessionID, args[0])
	},
}

var tabsRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Reopen the most recently closed tab",
	RunE: func(_ *cobra.Command, _ []string) error {
		sessionID, err := targetSession()
		if err != nil {
			return err
		}
		tab, err := app.Browser.RestoreLastClosedTabInSession(app.Ctx(), windowID(), sessionID)
		if err != nil {
			return err
		}
		fmt.Printf("restored %s\n", logging.TruncateURL(tab.URL, 80))
		return nil
	},
}

var tabsMoveCmd = &cobra.Command{
	Use:   "move <tab-id> <index>",
	Short: "Move a tab to a position (clamped to the ends)",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		sessionID, err := targetSession()
		if err != nil {
			return err
		}
		_, err = app.Browser.ReorderTabInSession(app.Ctx(), sessionID, args[0], index)
		return err
	},
}

var tabsActivateCmd = &cobra.Command{
	Use:   "activate <tab-id>",
	Short: "Focus a tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		sessionID, err := targetSession()
		if err != nil {
			return err
		}
		_, err = app.Browser.ActivateTabInSession(app.Ctx(), windowID(), sessionID, args[0])
		return err
	},
}

func init() {
	tabsCmd.PersistentFlags().BoolVar(&tabsJSON, "json", false, "output as JSON")
	tabsCmd.PersistentFlags().StringVar(&tabsSession, "session", "", "session ID (defaults to the active session)")
	tabsCmd.AddCommand(tabsListCmd, tabsOpenCmd, tabsCloseCmd, tabsRestoreCmd, tabsMoveCmd, tabsActivateCmd)
	rootCmd.AddCommand(tabsCmd)
}

func targetSession() (string, error) {
	if tabsSession != "" {
		return tabsSession, nil
	}
	session, err := app.Browser.Sessions().ActiveSession(app.Ctx())
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// windowID names the CLI's logical window for focus tracking.
func windowID() string {
	return "cli"
}

func runTabsList(_ *cobra.Command, _ []string) error {
	sessionID, err := targetSession()
	if err != nil {
		return err
	}
	tabs, err := app.Browser.Sessions().GetOrderedTabsForSession(app.Ctx(), sessionID)
	if err != nil {
		return err
	}

	if tabsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tabs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tSTATE\tTITLE\tURL")
	for i, tab := range tabs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			i, tab.ID, tab.State, tab.DisplayTitle(), logging.TruncateURL(tab.URL, 60))
	}
	return w.Flush()
}
