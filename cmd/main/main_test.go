package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := `
log:
  level: error
  file: ` + filepath.Join(dir, "app.log") + `
data:
  dir: ` + filepath.Join(dir, "data") + `
  backup_dir: ` + filepath.Join(dir, "backup") + `
marketplaces:
  - id: magaza
    file: magaza.csv
    columns:
      category: ["Ana Kategori"]
      sub_category: ["Kategori"]
      product_group: ["Ürün Grubu"]
      commission: ["Komisyon Oranı"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	src := filepath.Join(dir, "kaynak.csv")
	require.NoError(t, os.WriteFile(src, []byte(
		"Ana Kategori;Kategori;Ürün Grubu;Komisyon Oranı\n"+
			"Ev;Mutfak;Tava;%9,5\n"+
			"Ev;Mutfak;Tava;%9,5\n"+
			"Elektronik;Aksesuar;Kılıf;0,18\n"), 0o644))
	dst := filepath.Join(dir, "data", "magaza.csv")

	require.NoError(t, runCLI(t, "import", "--config", cfg, "-m", "magaza", "-i", src, "--dry-run", "--backup=false"))
	assert.NoFileExists(t, dst)

	require.NoError(t, runCLI(t, "import", "--config", cfg, "-m", "magaza", "-i", src, "--dry-run=false", "--backup=true"))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffKategori,Alt Kategori,Ürün Grubu,Komisyon_%_KDV_Dahil\n"+
		"Ev,Mutfak,Tava,9.5\n"+
		"Elektronik,Aksesuar,Kılıf,18\n", string(b))

	// второй импорт сохраняет предыдущий файл в backup_dir
	require.NoError(t, runCLI(t, "import", "--config", cfg, "-m", "magaza", "-i", src, "--dry-run=false", "--backup=true"))
	backups, err := filepath.Glob(filepath.Join(dir, "backup", "magaza_*.csv"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	assert.Error(t, runCLI(t, "import", "--config", cfg, "-m", "yok", "-i", "x.csv", "--dry-run=false", "--backup=false"))

	src := filepath.Join(dir, "bozuk.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644))
	assert.Error(t, runCLI(t, "import", "--config", cfg, "-m", "magaza", "-i", src, "--dry-run=false", "--backup=false"))
}
