package fileio

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"commission-service/internal/commission/model"
)

// readSQLite читает из sqlite-файла указанную таблицу или первую пользовательскую.
func readSQLite(path, table string) (model.Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return model.Table{}, err
	}
	defer db.Close()

	if table == "" {
		err := db.QueryRow(`SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY rowid LIMIT 1`).Scan(&table)
		if err == sql.ErrNoRows {
			return model.Table{}, fmt.Errorf("sqlite %s: no tables", path)
		}
		if err != nil {
			return model.Table{}, err
		}
	}

	rows, err := db.Query(`SELECT * FROM "` + strings.ReplaceAll(table, `"`, `""`) + `"`)
	if err != nil {
		return model.Table{}, fmt.Errorf("sqlite %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return model.Table{}, err
	}
	t := model.Table{Columns: cols}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return model.Table{}, err
		}
		cells := make([]model.RawCell, len(cols))
		empty := true
		for i, v := range vals {
			cells[i] = sqlCell(v)
			if !cells[i].IsNull() {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t, rows.Err()
}

func sqlCell(v any) model.RawCell {
	switch x := v.(type) {
	case nil:
		return model.NullCell()
	case int64:
		return model.NumberCell(float64(x))
	case float64:
		return model.NumberCell(x)
	case []byte:
		return model.CellFromString(string(x))
	case string:
		return model.CellFromString(x)
	default:
		return model.CellFromString(fmt.Sprint(x))
	}
}
