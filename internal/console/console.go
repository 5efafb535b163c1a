// Package console: интерактивный поиск комиссий в терминале.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"commission-service/internal/commission/service"
	"commission-service/internal/commission/store"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
	headColor = color.New(color.FgCyan, color.Bold)
)

type Console struct {
	svc   *service.Service
	st    *store.Store
	id    string
	in    io.Reader
	out   io.Writer
	limit int // сколько подсказок показывать
}

func New(svc *service.Service, st *store.Store, marketplace string, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, st: st, id: marketplace, in: in, out: out, limit: 8}
}

// Run читает запросы построчно до пустой строки, exit или EOF.
func (c *Console) Run(ctx context.Context) error {
	snap, err := c.st.Ready(c.id)
	if err != nil {
		return err
	}
	headColor.Fprintf(c.out, "%s komisyon arama (%d kayıt)\n", c.title(snap), len(snap.Records))
	dimColor.Fprintln(c.out, "Ürün adı yazın; 'help' komutları gösterir, boş satır çıkar.")

	sc := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(c.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		// снимок берём на каждой строке: store мог перечитать файл
		if snap, err = c.st.Ready(c.id); err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "", "exit", "quit", "q", "çıkış", "cikis":
			return nil
		case "help", "yardım", "yardim", "?":
			c.help()
		case "stats", "istatistik":
			c.stats(snap)
		case "suggest", "öneri", "oneri":
			c.suggest(snap)
		default:
			c.lookup(snap, line)
		}
	}
}

func (c *Console) title(snap *store.Snapshot) string {
	if snap.Profile.Name != "" {
		return snap.Profile.Name
	}
	return snap.Profile.ID
}

func (c *Console) lookup(snap *store.Snapshot, query string) {
	lk := c.svc.Lookup(snap.Index, query, service.EmptyQueryNone)
	if lk.Best == nil {
		errColor.Fprintf(c.out, "✗ '%s' için eşleşme bulunamadı\n", query)
		if sug := service.Suggestions(snap.Records, c.limit); len(sug) > 0 {
			dimColor.Fprintf(c.out, "  Öneriler: %s\n", strings.Join(sug, ", "))
		}
		return
	}

	okColor.Fprintf(c.out, "✓ %s  %s\n", lk.Best.Path(), percent(lk.Best.Commission))
	dimColor.Fprintf(c.out, "  seviye: %s, %d kayıt, %d grup\n", lk.Result.Tier, len(lk.Result.Hits), lk.Groups)
	if len(lk.Alternatives) == 0 {
		return
	}
	fmt.Fprintln(c.out, "  Alternatifler:")
	for i, g := range lk.Alternatives {
		fmt.Fprintf(c.out, "   %d. %s  %s\n", i+1, g.Path(), percent(g.Commission))
	}
}

func (c *Console) stats(snap *store.Snapshot) {
	st := service.ComputeStats(snap.Records)
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Kayıt\t%d\n", st.Records)
	fmt.Fprintf(w, "Kategori\t%d\n", st.Categories)
	fmt.Fprintf(w, "Alt kategori\t%d\n", st.SubCategories)
	fmt.Fprintf(w, "Ürün grubu\t%d\n", st.ProductGroups)
	fmt.Fprintf(w, "Komisyonlu\t%d\n", st.WithCommission)
	fmt.Fprintf(w, "Bilinmeyen\t%d\n", st.Unknown)
	if st.Min != nil {
		fmt.Fprintf(w, "Min / Ort / Max\t%s / %s / %s\n", percent(st.Min), percent(st.Avg), percent(st.Max))
	}
	_ = w.Flush()
	if snap.Report.Anomalous > 0 {
		warnColor.Fprintf(c.out, "⚠ %d kayıtta komisyon 0-100 aralığı dışında\n", snap.Report.Anomalous)
	}
}

func (c *Console) suggest(snap *store.Snapshot) {
	sug := service.Suggestions(snap.Records, c.limit)
	if len(sug) == 0 {
		warnColor.Fprintln(c.out, "⚠ öneri yok")
		return
	}
	fmt.Fprintf(c.out, "Öneriler: %s\n", strings.Join(sug, ", "))
}

func (c *Console) help() {
	fmt.Fprintln(c.out, "Komutlar:")
	fmt.Fprintln(c.out, "  <ürün adı>  en yüksek komisyonlu eşleşme ve alternatifler")
	fmt.Fprintln(c.out, "  stats       veri istatistikleri")
	fmt.Fprintln(c.out, "  suggest     sık geçen ürün kelimeleri")
	fmt.Fprintln(c.out, "  exit        çıkış (boş satır da çıkar)")
}

func percent(v *float64) string {
	if v == nil {
		return "komisyon bilinmiyor"
	}
	return "%" + strings.TrimSuffix(service.FormatPercent(v), "%")
}

// PrintStats печатает то же, что команда stats, без интерактива.
func PrintStats(out io.Writer, snap *store.Snapshot) {
	(&Console{out: out}).stats(snap)
}
