package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"commission-service/internal/console"
)

var statsMarketplace string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Veri istatistikleri; --marketplace yoksa tüm pazaryerlerinin özeti",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsMarketplace, "marketplace", "m", "", "marketplace id")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := setup("warn")
	if err != nil {
		return err
	}
	if _, err := a.st.Refresh(cmd.Context(), true); err != nil {
		return err
	}

	if statsMarketplace != "" {
		p, ok := a.cfg.Profile(statsMarketplace)
		if !ok {
			return fmt.Errorf("unknown marketplace %q", statsMarketplace)
		}
		snap, err := a.st.Ready(p.ID)
		if err != nil {
			return err
		}
		color.New(color.FgCyan, color.Bold).Printf("%s (%s)\n", p.Name, snap.Path)
		console.PrintStats(os.Stdout, snap)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAD\tKAYIT\tÜRÜN\tDOSYA\tDURUM")
	for _, m := range a.st.Marketplaces() {
		state := "ok"
		switch {
		case !m.Exists:
			state = "dosya yok"
		case m.Error != "":
			state = m.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", m.ID, m.Name, m.RowCount, m.ProductCount, m.Path, state)
	}
	return w.Flush()
}
