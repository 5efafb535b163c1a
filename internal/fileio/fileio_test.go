package fileio

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"commission-service/internal/commission/model"
)

func TestReadCSV_UTF8WithBOMAndSemicolon(t *testing.T) {
	data := "\xEF\xBB\xBFKategori;Ürün Grubu;Komisyon\n" +
		"Elektronik;Akıllı Telefon;%15\n" +
		";;\n" +
		"Ev;Tava;\n"
	tbl, err := ReadTable(strings.NewReader(data), "komisyon.csv", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Kategori", "Ürün Grubu", "Komisyon"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, model.TextCell("Akıllı Telefon"), tbl.Cell(0, 1))
	assert.Equal(t, model.TextCell("%15"), tbl.Cell(0, 2))
	assert.True(t, tbl.Cell(1, 2).IsNull())
}

func TestReadCSV_Windows1254(t *testing.T) {
	src := "Kategori,Ürün Grubu,Komisyon\nGiyim,Gömlek,\"17,5\"\nBahçe,Çim Biçme Makinesi,12\n"
	enc, err := charmap.Windows1254.NewEncoder().String(src)
	require.NoError(t, err)

	tbl, err := ReadTable(strings.NewReader(enc), "eski.CSV", Options{})
	require.NoError(t, err)
	assert.Equal(t, "Ürün Grubu", tbl.Columns[1])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Gömlek", tbl.Cell(0, 1).String())
	assert.Equal(t, "17,5", tbl.Cell(0, 2).String())
	assert.Equal(t, "Çim Biçme Makinesi", tbl.Cell(1, 1).String())
}

func TestReadCSV_HeaderRowAndBlankHeaders(t *testing.T) {
	data := "Komisyon Oranları 2024\nKategori,,Oran\nEv,Tava,8\n"
	tbl, err := ReadTable(strings.NewReader(data), "x.csv", Options{HeaderRow: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kategori", "Column 2", "Oran"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Tava", tbl.Cell(0, 1).String())
}

func TestReadXLSX_SheetAndNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "komisyon.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Komisyon")
	require.NoError(t, err)
	for cell, v := range map[string]any{
		"A1": "Kategori", "B1": "Ürün Grubu", "C1": "Oran",
		"A2": "Ev", "B2": "Tava", "C2": 0.15,
		"A3": "Ev", "B3": "Tencere", "C3": "yok",
	} {
		require.NoError(t, f.SetCellValue("Komisyon", cell, v))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := ReadFile(path, Options{Sheet: "Komisyon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kategori", "Ürün Grubu", "Oran"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, model.NumberCell(0.15), tbl.Cell(0, 2))
	assert.Equal(t, model.TextCell("yok"), tbl.Cell(1, 2))

	// первый лист пустой
	empty, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)

	_, err = ReadFile(path, Options{Sheet: "Yok"})
	assert.Error(t, err)
}

func TestReadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "komisyon.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE oranlar (kategori TEXT, urun_grubu TEXT, oran REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO oranlar VALUES ('Ev', 'Tava', 8.5), (NULL, NULL, NULL), ('Ev', 'Bardak', NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kategori", "urun_grubu", "oran"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, model.NumberCell(8.5), tbl.Cell(0, 2))
	assert.True(t, tbl.Cell(1, 2).IsNull())

	_, err = ReadFile(path, Options{Sheet: "yok"})
	assert.Error(t, err)
}

func TestReadTable_Unsupported(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), "komisyon.pdf", Options{})
	assert.ErrorIs(t, err, model.ErrUnsupportedFile)
	assert.False(t, Supported("a.pdf"))
	assert.True(t, Supported("a.XLSX"))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "n11_commissions.csv")
	err := WriteCSV(path, model.CanonicalColumns, [][]string{
		{"Elektronik", "Telefon", "Akıllı Telefon", "15"},
		{"Ev", "", "Tava", ""},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"))

	tbl, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, model.CanonicalColumns, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.Cell(1, 1).IsNull())

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	assert.Empty(t, matches)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "pttavm_2024-03-05_140709.csv", BackupName("/x/pttavm.csv", now))

	got, err := Backup(filepath.Join(dir, "yok.csv"), dir, now)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	src := filepath.Join(dir, "pttavm.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n"), 0o644))
	got, err = Backup(src, filepath.Join(dir, "backup"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup", "pttavm_2024-03-05_140709.csv"), got)
	b, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(b))
}
