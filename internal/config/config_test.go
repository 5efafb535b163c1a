package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 30*time.Second, cfg.Data.ReloadInterval)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0.6, cfg.Search.FuzzyThreshold)
	assert.Equal(t, "none", cfg.Search.EmptyQuery)
	co := cfg.CacheOptions()
	assert.Equal(t, 2048, co.MaxEntries)
	assert.Equal(t, "commission:", co.Redis.Prefix)

	require.Len(t, cfg.Marketplaces, 6)
	p, ok := cfg.Profile(" N11 ")
	require.True(t, ok)
	assert.Equal(t, model.PresentProductGroups, p.Presentation)
	assert.True(t, p.CountDistinct)
	assert.Equal(t, 1, p.HeaderRow)
	assert.Equal(t, filepath.Join("data", "n11_commissions.csv"), cfg.DataPath(p))

	_, ok = cfg.Profile("etsy")
	assert.False(t, ok)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("COMMISSION_SERVER_PORT", "9000")
	t.Setenv("COMMISSION_SERVER_ALLOW_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("COMMISSION_SEARCH_FUZZY_ALGORITHM", "damerau")
	t.Setenv("COMMISSION_CACHE_DRIVER", "none")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "damerau", cfg.Search.FuzzyAlgorithm)
	assert.Equal(t, "none", cfg.Cache.Driver)
}

func TestLoad_FileWithMarketplaces(t *testing.T) {
	path := writeYAML(t, `
search:
  fuzzy_threshold: 0.75
  max_alternatives: 3
  exclude_anomalous: true
data:
  dir: /srv/komisyon
marketplaces:
  - id: Trendyol
    file: trendyol.xlsx
    sheet: Komisyonlar
    header_row: 2
    columns:
      category: ["Ana Kategori"]
      product_group: ["Ürün Grubu"]
      commission: ["Komisyon"]
  - id: yerel
    name: Yerel Mağaza
    file: /tmp/yerel.csv
    presentation: category_path
    columns:
      product_group: ["Ürün"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Marketplaces, 2)

	ty := cfg.Marketplaces[0]
	assert.Equal(t, "trendyol", ty.ID)
	assert.Equal(t, "trendyol", ty.Name)
	assert.Equal(t, "Komisyonlar", ty.Sheet)
	assert.Equal(t, 2, ty.HeaderRow)
	assert.Equal(t, model.PresentRows, ty.Presentation)
	assert.Equal(t, []string{"Ürün Grubu"}, ty.Columns.ProductGroup)
	assert.Equal(t, filepath.Join("/srv/komisyon", "trendyol.xlsx"), cfg.DataPath(ty))

	local := cfg.Marketplaces[1]
	assert.Equal(t, "Yerel Mağaza", local.Name)
	assert.Equal(t, model.PresentCategoryPath, local.Presentation)
	assert.Equal(t, "/tmp/yerel.csv", cfg.DataPath(local))

	opt := cfg.ServiceOptions()
	assert.Equal(t, 0.75, opt.Search.FuzzyThreshold)
	assert.Equal(t, service.FuzzySequence, opt.Search.Algorithm)
	assert.Equal(t, 3, opt.Resolver.MaxAlternatives)
	assert.True(t, opt.Resolver.ExcludeAnomalous)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, body string
	}{
		{"threshold", "search:\n  fuzzy_threshold: 1.5\n"},
		{"algorithm", "search:\n  fuzzy_algorithm: jaro\n"},
		{"empty query", "search:\n  empty_query: some\n"},
		{"cache driver", "cache:\n  driver: memcached\n"},
		{"duplicate", "marketplaces:\n  - {id: a, file: a.csv, columns: {product_group: [x]}}\n  - {id: A, file: b.csv, columns: {product_group: [x]}}\n"},
		{"no file", "marketplaces:\n  - {id: a, columns: {product_group: [x]}}\n"},
		{"no aliases", "marketplaces:\n  - {id: a, file: a.csv}\n"},
		{"presentation", "marketplaces:\n  - {id: a, file: a.csv, presentation: table, columns: {product_group: [x]}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeYAML(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "yok.yaml"))
	assert.Error(t, err)
}

func TestDefaultProfiles(t *testing.T) {
	ids := map[string]bool{}
	for _, p := range DefaultProfiles() {
		ids[p.ID] = true
		assert.NotEmpty(t, p.File, p.ID)
		assert.NotEmpty(t, p.Columns.ProductGroup, p.ID)
		assert.True(t, p.Presentation.Valid(), p.ID)
	}
	for _, id := range []string{"trendyol", "hepsiburada", "n11", "amazon", "ciceksepeti", "pttavm"} {
		assert.True(t, ids[id], id)
	}
}

func TestSetupLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	logger := SetupLogger(LogConfig{Level: "debug", File: file, NoColor: true})
	logger.Info().Str("marketplace", "n11").Msg("reloaded")

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"marketplace":"n11"`)
}
