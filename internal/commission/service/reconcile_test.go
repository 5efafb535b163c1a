package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commission-service/internal/commission/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New(Options{CacheSize: 64}, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func table(cols []string, rows ...[]string) model.Table {
	t := model.Table{Columns: cols}
	for _, r := range rows {
		cells := make([]model.RawCell, len(r))
		for i, v := range r {
			cells[i] = model.CellFromString(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

var trendyolLike = model.Profile{
	ID: "trendyol",
	Columns: model.Aliases{
		Category:     []string{"Ana Kategori", "Kategori"},
		SubCategory:  []string{"Kategori", "Alt Kategori"},
		ProductGroup: []string{"Ürün Grubu", "Urun Grubu", "Urun_Grubu"},
		Commission:   []string{"Komisyon_%_KDV_Dahil", "komisyon"},
	},
}

func TestReconcile_AliasResolution(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"ANA KATEGORİ", "Kategori", "Urun Grubu", "Komisyon"},
		[]string{"Elektronik", "Telefon", "Akıllı Telefon", "%15"},
		[]string{" Ev ", "Mutfak", "Tava", "0,08"},
	)

	res, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "ANA KATEGORİ", res.Columns[model.FieldCategory])
	assert.Equal(t, "Kategori", res.Columns[model.FieldSubCategory])
	assert.Equal(t, "Urun Grubu", res.Columns[model.FieldProductGroup])
	assert.Equal(t, "Komisyon", res.Columns[model.FieldCommission])

	assert.Equal(t, "Ev", res.Records[1].Category)
	require.NotNil(t, res.Records[1].Commission)
	assert.InDelta(t, 8.0, *res.Records[1].Commission, 1e-9)
}

func TestReconcile_ExactBeatsContains(t *testing.T) {
	s := newTestService(t)
	// "Alt Kategori" содержит "kategori", но точное совпадение по "Kategori" идёт первым
	tbl := table([]string{"Alt Kategori", "Kategori", "Ürün Grubu"},
		[]string{"Kılıf", "Telefon", "Akıllı Telefon"},
	)
	p := model.Profile{ID: "x", Columns: model.Aliases{
		Category:     []string{"Kategori"},
		ProductGroup: []string{"Ürün Grubu"},
	}}
	res, err := s.Reconciler.Reconcile(tbl, p)
	require.NoError(t, err)
	assert.Equal(t, "Kategori", res.Columns[model.FieldCategory])
	assert.Equal(t, "Telefon", res.Records[0].Category)
}

func TestReconcile_ContainsFallback(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Kategori Adı", "Ürün Grubu Tanımı", "Komisyon Oranı (%)"},
		[]string{"Bahçe", "Çim Biçme", "12"},
	)
	p := model.Profile{ID: "x", Columns: model.Aliases{
		Category:     []string{"Kategori"},
		ProductGroup: []string{"Ürün Grubu"},
		Commission:   []string{"Komisyon Oranı"},
	}}
	res, err := s.Reconciler.Reconcile(tbl, p)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, model.Record{Category: "Bahçe", ProductGroup: "Çim Biçme", Commission: model.Float(12)}, res.Records[0])
}

func TestReconcile_MissingProductGroup(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Kategori", "Alt Kategori", "Oran"}, []string{"a", "b", "1"})

	_, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingRequiredColumn))

	var mce *model.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, model.FieldProductGroup, mce.Field)
	assert.Equal(t, "trendyol", mce.Marketplace)
}

func TestReconcile_MissingBothCategories(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Ürün Grubu", "Komisyon"}, []string{"Tava", "8"})
	p := model.Profile{ID: "x", Columns: model.Aliases{
		Category:     []string{"Ana Kategori"},
		SubCategory:  []string{"Alt Kategori"},
		ProductGroup: []string{"Ürün Grubu"},
	}}
	_, err := s.Reconciler.Reconcile(tbl, p)
	assert.ErrorIs(t, err, model.ErrMissingRequiredColumn)
}

func TestReconcile_SameColumnLeavesSubCategoryEmpty(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Kategori", "Ürün Grubu", "Komisyon_%_KDV_Dahil"},
		[]string{"Elektronik", "Akıllı Telefon", "15"},
		[]string{"Ev", "Tava", "8"},
	)
	res, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.NotEmpty(t, r.Category)
		assert.Equal(t, "", r.SubCategory)
	}
	assert.Equal(t, "", res.Columns[model.FieldSubCategory])
}

func TestReconcile_OnlySubCategoryFillsCategory(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Alt Kategori", "Ürün Grubu"}, []string{"Mutfak", "Tava"})
	p := model.Profile{ID: "x", Columns: model.Aliases{
		Category:     []string{"Ana Kategori"},
		SubCategory:  []string{"Alt Kategori"},
		ProductGroup: []string{"Ürün Grubu"},
	}}
	res, err := s.Reconciler.Reconcile(tbl, p)
	require.NoError(t, err)
	assert.Equal(t, "Mutfak", res.Records[0].Category)
	assert.Equal(t, "", res.Records[0].SubCategory)
	assert.Nil(t, res.Records[0].Commission)
}

func TestReconcile_DropsEmptyAndDuplicates(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Kategori", "Alt Kategori", "Ürün Grubu", "Komisyon_%_KDV_Dahil"},
		[]string{"Elektronik", "Telefon", "Akıllı Telefon", "15"},
		[]string{"", "", "", "20"},
		[]string{"nan", "nan", "nan", ""},
		[]string{"Elektronik", "Telefon", "Akıllı Telefon", "15"},
		[]string{"Elektronik", "Telefon", "Akıllı Telefon", "18"},
		[]string{"Elektronik", "Telefon", "", "10"},
		[]string{"Elektronik", "Telefon", "Kılıf", "yok"},
		[]string{"Elektronik", "Telefon", "Kılıf", ""},
		[]string{"Ev", "Mutfak", "Tava", "1.234,56"},
	)
	res, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)

	want := []model.Record{
		{Category: "Elektronik", SubCategory: "Telefon", ProductGroup: "Akıllı Telefon", Commission: model.Float(15)},
		{Category: "Elektronik", SubCategory: "Telefon", ProductGroup: "Akıllı Telefon", Commission: model.Float(18)},
		{Category: "Elektronik", SubCategory: "Telefon", ProductGroup: "Kılıf"},
		{Category: "Ev", SubCategory: "Mutfak", ProductGroup: "Tava", Commission: model.Float(1234.56)},
	}
	assert.Equal(t, want, res.Records)
	assert.Equal(t, Report{
		Rows: 9, Kept: 4, Empty: 2, NoProductGroup: 1, Duplicates: 2, Unparseable: 1, Anomalous: 1,
	}, res.Report)
}

func TestReconcile_DeterministicOrder(t *testing.T) {
	s := newTestService(t)
	tbl := table([]string{"Kategori", "Alt Kategori", "Ürün Grubu"},
		[]string{"b", "x", "2"},
		[]string{"a", "y", "1"},
		[]string{"c", "z", "3"},
	)
	r1, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)
	r2, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)
	assert.Equal(t, r1.Records, r2.Records)
	assert.Equal(t, "2", r1.Records[0].ProductGroup)
}

func TestReconcile_NumberCells(t *testing.T) {
	s := newTestService(t)
	tbl := model.Table{
		Columns: []string{"Kategori", "Alt Kategori", "Ürün Grubu", "Komisyon_%_KDV_Dahil"},
		Rows: [][]model.RawCell{
			{model.TextCell("Ev"), model.NullCell(), model.TextCell("Tava"), model.NumberCell(0.08)},
		},
	}
	res, err := s.Reconciler.Reconcile(tbl, trendyolLike)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.InDelta(t, 8.0, *res.Records[0].Commission, 1e-9)
	assert.Equal(t, "", res.Records[0].SubCategory)
}
