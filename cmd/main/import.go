package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
	"commission-service/internal/fileio"
)

var (
	importMarketplace string
	importInput       string
	importOutput      string
	importSheet       string
	importHeaderRow   int
	importBackup      bool
	importDryRun      bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Pazaryeri tablosunu (csv, xlsx, xls, sqlite) kanonik CSV'ye dönüştürür",
	RunE:  runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importMarketplace, "marketplace", "m", "", "marketplace id (required)")
	f.StringVarP(&importInput, "input", "i", "", "source file (required)")
	f.StringVarP(&importOutput, "output", "o", "", "output csv (default: marketplace file in data.dir)")
	f.StringVar(&importSheet, "sheet", "", "xlsx sheet name or sqlite table (default: first)")
	f.IntVar(&importHeaderRow, "header-row", 0, "1-based header row (default: profile header_row)")
	f.BoolVar(&importBackup, "backup", true, "copy the current file to data.backup_dir first")
	f.BoolVar(&importDryRun, "dry-run", false, "only print the reconcile report")
	_ = importCmd.MarkFlagRequired("marketplace")
	_ = importCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := setup("")
	if err != nil {
		return err
	}
	p, ok := a.cfg.Profile(importMarketplace)
	if !ok {
		return fmt.Errorf("unknown marketplace %q", importMarketplace)
	}

	opt := fileio.Options{Sheet: p.Sheet, HeaderRow: p.HeaderRow}
	if importSheet != "" {
		opt.Sheet = importSheet
	}
	if importHeaderRow > 0 {
		opt.HeaderRow = importHeaderRow
	}
	tbl, err := fileio.ReadFile(importInput, opt)
	if err != nil {
		return err
	}
	res, err := a.svc.Reconciler.Reconcile(tbl, p)
	if err != nil {
		return err
	}

	rep := res.Report
	fmt.Printf("%s: %d satır, %d kayıt (boş %d, ürün grubu yok %d, tekrar %d, okunamayan komisyon %d, aralık dışı %d)\n",
		p.ID, rep.Rows, rep.Kept, rep.Empty, rep.NoProductGroup, rep.Duplicates, rep.Unparseable, rep.Anomalous)
	for _, f := range []model.Field{model.FieldCategory, model.FieldSubCategory, model.FieldProductGroup, model.FieldCommission} {
		fmt.Printf("  %-14s ← %s\n", f, res.Columns[f])
	}
	if importDryRun {
		return nil
	}
	if rep.Kept == 0 {
		return fmt.Errorf("%s: no records to write", importInput)
	}

	dst := importOutput
	if dst == "" {
		dst = a.cfg.DataPath(p)
	}
	if !strings.EqualFold(filepath.Ext(dst), ".csv") {
		return fmt.Errorf("output must be .csv, got %s (use --output)", dst)
	}
	if importBackup {
		bak, err := fileio.Backup(dst, a.cfg.Data.BackupDir, time.Now())
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		if bak != "" {
			fmt.Printf("yedek: %s\n", bak)
		}
	}
	if err := fileio.WriteCSV(dst, model.CanonicalColumns, service.CanonicalRows(res.Records)); err != nil {
		return err
	}
	a.log.Info().Str("marketplace", p.ID).Str("input", importInput).Str("output", dst).Int("records", rep.Kept).Msg("imported")
	color.New(color.FgGreen).Printf("✓ %s yazıldı (%d kayıt)\n", dst, rep.Kept)
	return nil
}
