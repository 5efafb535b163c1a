package fileio

import (
	"bytes"
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"commission-service/internal/commission/model"
)

func readXLSX(r io.Reader, opt Options) (model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return model.Table{}, fmt.Errorf("xlsx: sheet %q not found", sheet)
	}

	// сырые значения: 15% в ячейке приходит как 0.15, а не "15%"
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Table{}, err
	}
	return rowsToTable(rows, opt.headerRow(), typedCell), nil
}
