package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage browser sessions",
	Long: `List, create, switch, rename and delete sessions.

Exactly one session is active at a time; new tabs created without an
explicit session land there.`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE:  runSessionsList,
}

var sessionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		session, err := app.Browser.Sessions().CreateSession(app.Ctx(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created session %s (%s)\n", session.Name, session.ID)
		return nil
	},
}

var sessionsSwitchCmd = &cobra.Command{
	Use:   "switch <session-id>",
	Short: "Make a session the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		session, err := app.Browser.Sessions().SwitchSession(app.Ctx(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("switched to %s (%d tabs)\n", session.Name, session.TabCount())
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <name>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		session, err := app.Browser.Sessions().RenameSession(app.Ctx(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("renamed session %s to %s\n", session.ID, session.Name)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its tabs",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := app.Browser.DeleteSession(app.Ctx(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().BoolVar(&sessionsJSON, "json", false, "output as JSON")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsCreateCmd, sessionsSwitchCmd, sessionsRenameCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(_ *cobra.Command, _ []string) error {
	sessions := app.Browser.Sessions().ListSessions(app.Ctx())
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	if sessionsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tTABS\tCREATED")
	for _, s := range sessions {
		marker := " "
		if s.IsActive {
			marker = "●"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			marker, s.ID, s.Name, s.TabCount(), s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
