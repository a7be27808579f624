package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/souqra"
	"github.com/aretw0/souqra/internal/presentation/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of souqra",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(souqra.Version)
		if tui.Interactive(os.Stdout) {
			tui.PrintBanner(os.Stdout, version)
			return
		}
		fmt.Printf("souqra version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
