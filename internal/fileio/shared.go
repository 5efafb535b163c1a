package fileio

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"commission-service/internal/commission/model"
)

// Options: где в источнике искать таблицу.
type Options struct {
	Sheet     string // xlsx/xls: имя листа; sqlite: имя таблицы. Пусто = первый
	HeaderRow int    // 1-based, 0 = 1
}

func (o Options) headerRow() int {
	if o.HeaderRow <= 0 {
		return 1
	}
	return o.HeaderRow
}

// Supported сообщает, умеем ли читать файл с таким расширением.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls", ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// ReadTable выбирает парсер по расширению и возвращает сырую таблицу.
func ReadTable(r io.Reader, filename string, opt Options) (model.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, opt)
	case ".xls":
		return readXLS(r, opt)
	case ".csv":
		return readCSV(r, opt.headerRow())
	case ".db", ".sqlite", ".sqlite3":
		// sqlite читается только с диска
		tmp, err := os.CreateTemp("", "commission-*"+ext)
		if err != nil {
			return model.Table{}, err
		}
		defer os.Remove(tmp.Name())
		if _, err := io.Copy(tmp, r); err != nil {
			tmp.Close()
			return model.Table{}, err
		}
		if err := tmp.Close(); err != nil {
			return model.Table{}, err
		}
		return readSQLite(tmp.Name(), opt.Sheet)
	default:
		return model.Table{}, fmt.Errorf("%w: %s", model.ErrUnsupportedFile, filename)
	}
}

// ReadFile делает то же, что ReadTable, но по пути на диске.
func ReadFile(path string, opt Options) (model.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return readSQLite(path, opt.Sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()
	return ReadTable(f, path, opt)
}

// pickHeader берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToTable: AoA в Table по заголовкам, полностью пустые строки пропускаются.
// cell решает, как превратить строку в ячейку (текст или число).
func rowsToTable(rows [][]string, headerRow int, cell func(string) model.RawCell) model.Table {
	if len(rows) == 0 {
		return model.Table{}
	}
	headers := pickHeader(rows, headerRow)
	t := model.Table{Columns: headers}
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		cells := make([]model.RawCell, len(headers))
		empty := true
		for c := range headers {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			cells[c] = cell(v)
		}
		if !empty {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

// textCell для CSV: всё текст, пустое = Null.
func textCell(s string) model.RawCell { return model.CellFromString(s) }

// typedCell для Excel: то, что читается как число, становится Number.
func typedCell(s string) model.RawCell {
	s = normalizeCell(s)
	if s == "" {
		return model.NullCell()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return model.NumberCell(f)
	}
	return model.TextCell(s)
}

// TrimSpace снимает и NBSP/NNBSP.
func normalizeCell(s string) string { return strings.TrimSpace(s) }
