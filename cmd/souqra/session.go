package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra/internal/presentation/tui"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, report on and remove sessions in the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Engine.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tPRODUCT\tSTEP\tOWNER\tUPDATED")
		for _, id := range ids {
			s, err := app.Engine.Session(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(w, "%s\t?\t%v\t\t\n", id, err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SessionID, s.UserInput.ProductName, s.CurrentStep, s.Owner, s.UpdatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored state of a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Session(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling state: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionReportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Render the launch kit of a session as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		md, err := app.Engine.Report(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if !raw && tui.Interactive(os.Stdout) {
			if render, err := tui.NewRenderer(tui.Width(os.Stdout)); err == nil {
				if out, err := render(md); err == nil {
					md = out
				}
			}
		}
		fmt.Print(md)
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, sessionID := range args {
			if err := app.Engine.Delete(cmd.Context(), sessionID); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", sessionID, err))
				continue
			}
			fmt.Printf("Removed session '%s'\n", sessionID)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionReportCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionReportCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
