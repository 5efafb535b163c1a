package fileio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupLayout = "2006-01-02_150405"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV пишет UTF-8 CSV с BOM (Excel его так открывает) через временный файл и rename.
func WriteCSV(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // после rename: no-op

	if _, err := tmp.Write(utf8BOM); err != nil {
		tmp.Close()
		return err
	}
	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// BackupName: commissions.csv → commissions_2006-01-02_150405.csv
func BackupName(path string, now time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + now.Format(backupLayout) + ext
}

// Backup копирует существующий файл в dir. Нет файла: нечего бэкапить, вернёт "".
func Backup(path, dir string, now time.Time) (string, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, BackupName(path, now))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return dst, out.Close()
}
