package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"commission-service/internal/console"
)

var lookupMarketplace string

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Etkileşimli komisyon arama",
	Long:  "Ürün adı yazın; en yüksek komisyonlu eşleşme ve alternatifler gösterilir. Boş satır veya exit çıkar.",
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupMarketplace, "marketplace", "m", "trendyol", "marketplace id")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := setup("warn")
	if err != nil {
		return err
	}
	p, ok := a.cfg.Profile(lookupMarketplace)
	if !ok {
		return fmt.Errorf("unknown marketplace %q", lookupMarketplace)
	}
	if _, err := a.st.Refresh(cmd.Context(), true); err != nil {
		return err
	}
	return console.New(a.svc, a.st, p.ID, os.Stdin, os.Stdout).Run(cmd.Context())
}
