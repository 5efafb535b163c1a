// Парсер .xls: ширину таблицы фиксируем сами и читаем все ячейки до неё.
package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xls "github.com/extrame/xls"

	"commission-service/internal/commission/model"
)

// вычисляем "реальную" ширину: пробегаем разумное число колонок и ищем непустые
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 256
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := maxCols; j < probeMax; j++ {
			if normalizeCell(r.Col(j)) != "" {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func findSheet(wb *xls.WorkBook, name string) (*xls.WorkSheet, error) {
	if name == "" {
		return wb.GetSheet(0), nil
	}
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("xls: sheet %q not found", name)
}

func readXLS(r io.Reader, opt Options) (model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, err
	}

	// старые .xls из турецкого Excel: cp1254, новые иногда UTF-8
	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"windows-1254", "utf-8"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return model.Table{}, lastErr
	}

	sheet, err := findSheet(wb, opt.Sheet)
	if err != nil {
		return model.Table{}, err
	}
	if sheet == nil {
		return model.Table{}, nil
	}

	// НЕ полагаемся на Row.LastCol()
	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return rowsToTable(rows, opt.headerRow(), typedCell), nil
}
