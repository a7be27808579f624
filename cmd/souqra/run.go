package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/cli"
	"github.com/aretw0/souqra/internal/presentation/tui"
	"github.com/aretw0/souqra/pkg/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a launch-kit session in the terminal",
	Long: `Starts a new session from a brief (flags or --brief file) or resumes one
with --session. At each checkpoint pick a persona or a creative draft by
number or name; "q" stops and keeps the session for later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		auto, _ := cmd.Flags().GetBool("auto")
		sessionID, _ := cmd.Flags().GetString("session")
		owner, _ := cmd.Flags().GetString("owner")

		brief, err := briefFromFlags(cmd)
		if err != nil {
			return err
		}

		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := cli.RunOptions{
			SessionID: sessionID,
			Brief:     brief,
			Owner:     owner,
			JSON:      jsonMode,
			Auto:      auto,
			In:        os.Stdin,
			Out:       os.Stdout,
		}
		if !jsonMode && tui.Interactive(os.Stdout) {
			tui.PrintBanner(os.Stdout, souqra.Version)
			if render, err := tui.NewRenderer(tui.Width(os.Stdout)); err == nil {
				opts.Renderer = render
			}
		}

		_, err = cli.RunSession(cmd.Context(), app.Engine, opts, app.Logger)
		return err
	},
}

// briefFromFlags reads --brief, then lets the individual flags override it.
func briefFromFlags(cmd *cobra.Command) (domain.Brief, error) {
	var brief domain.Brief
	if path, _ := cmd.Flags().GetString("brief"); path != "" {
		b, err := cli.LoadBrief(path)
		if err != nil {
			return brief, err
		}
		brief = b
	}
	fields := map[string]*string{
		"product":     &brief.ProductName,
		"description": &brief.ProductDescription,
		"usp":         &brief.USP,
		"voice":       &brief.BrandVoice,
		"location":    &brief.TargetLocation,
		"competitors": &brief.Competitors,
		"objective":   &brief.LaunchObjective,
		"hypothesis":  &brief.CustomerHypothesis,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	return brief, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Resume an existing session")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("auto", false, "Pick the first option at every checkpoint")
	runCmd.Flags().String("owner", "", "Owner recorded on the session (for kits)")
	runCmd.Flags().String("brief", "", "Brief file (YAML or JSON with productName, usp, ...)")

	runCmd.Flags().String("product", "", "Product name")
	runCmd.Flags().String("description", "", "Product description")
	runCmd.Flags().String("usp", "", "Unique selling proposition")
	runCmd.Flags().String("voice", "", "Brand voice")
	runCmd.Flags().String("location", "", "Target location")
	runCmd.Flags().String("competitors", "", "Known competitors")
	runCmd.Flags().String("objective", "", "Launch objective")
	runCmd.Flags().String("hypothesis", "", "Customer hypothesis")
}
