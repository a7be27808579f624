package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var kitsCmd = &cobra.Command{
	Use:   "kits",
	Short: "List completed launch kits",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := openApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		kits, err := app.Engine.Kits(cmd.Context(), owner)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(kits)
		}
		if len(kits) == 0 {
			fmt.Println("No launch kits yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tPRODUCT\tPERSONA\tSTYLE\tOWNER")
		for _, k := range kits {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k.SessionID, k.ProductName, k.Persona, k.Style, k.Owner)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(kitsCmd)
	kitsCmd.Flags().String("owner", "", "Only list kits of this owner")
	kitsCmd.Flags().Bool("json", false, "Print JSON")
}
