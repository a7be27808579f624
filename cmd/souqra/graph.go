package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra/internal/presentation/graph"
	"github.com/aretw0/souqra/pkg/workflow"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the pipeline steps and checkpoints.
With --session the steps the session went through are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			fmt.Print(graph.GenerateMermaid(workflow.Launch, nil))
			return nil
		}

		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Session(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}
		def := app.Engine.Definition()
		fmt.Print(graph.GenerateMermaid(def, graph.OverlayFor(def, state)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the progress of a session")
}
