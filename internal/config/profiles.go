package config

import "commission-service/internal/commission/model"

var productGroupAliases = []string{"Ürün Grubu", "Urun Grubu", "Urun_Grubu"}

// DefaultProfiles: встроенные маркетплейсы, если в конфиге нет секции marketplaces.
// Порядок алиасов = приоритет при сопоставлении колонок.
func DefaultProfiles() []model.Profile {
	return []model.Profile{
		{
			ID: "trendyol", Name: "Trendyol", File: "commissions_flat.csv",
			Columns: model.Aliases{
				Category:     []string{"Ana Kategori", "Kategori"},
				SubCategory:  []string{"Kategori", "Alt Kategori"},
				ProductGroup: productGroupAliases,
				Commission:   []string{"Komisyon_%_KDV_Dahil", "komisyon"},
			},
			Presentation: model.PresentRows,
		},
		{
			// "Ana Kategori" + "Kategori": второй на деле подкатегория, это решают алиасы
			ID: "hepsiburada", Name: "Hepsiburada", File: "hepsiburada_commissions.csv",
			Columns: model.Aliases{
				Category:     []string{"Ana Kategori", "Kategori"},
				SubCategory:  []string{"Kategori", "Alt Kategori"},
				ProductGroup: productGroupAliases,
				Commission:   []string{"Komisyon_%_KDV_Dahil", "Uygulanan_Komisyon_%_KDV_Dahil", "komisyon"},
			},
			Presentation: model.PresentRows,
		},
		{
			ID: "n11", Name: "N11", File: "n11_commissions.csv",
			Columns: model.Aliases{
				Category:     []string{"Kategori", "Ana Kategori"},
				SubCategory:  []string{"Alt Kategori", "Kategori"},
				ProductGroup: productGroupAliases,
				Commission:   []string{"Komisyon_%_KDV_Dahil", "komisyon"},
			},
			Presentation:  model.PresentProductGroups,
			CountDistinct: true,
		},
		{
			ID: "amazon", Name: "Amazon", File: "amazon_commissions.csv",
			Columns: model.Aliases{
				Category:     []string{"Kategori"},
				SubCategory:  []string{"Alt Kategori"},
				ProductGroup: []string{"Ürün Grubu", "Kategori"},
				Commission:   []string{"Komisyon_%_KDV_Dahil", "Satış Komisyonu (+KDV)"},
			},
			Presentation:  model.PresentProductGroups,
			CountDistinct: true,
		},
		{
			ID: "ciceksepeti", Name: "ÇiçekSepeti", File: "ciceksepeti_commissions.csv",
			Columns: model.Aliases{
				Category:     []string{"Kategori", "Ana Kategori"},
				SubCategory:  []string{"Alt Kategori", "Kategori"},
				ProductGroup: []string{"Ürün Grubu", "Kategori"},
				Commission:   []string{"Komisyon_%_KDV_Dahil", "Komisyon Oranı", "Revize Komisyon Oranı"},
			},
			Presentation:  model.PresentCategoryPath,
			CountDistinct: true,
		},
		{
			ID: "pttavm", Name: "PTTAVM", File: "pttavm_commissions.csv",
			Columns: model.Aliases{
				Category:     []string{"Kategori", "Ana Kategori"},
				SubCategory:  []string{"Alt Kategori"},
				ProductGroup: []string{"Ürün Grubu", "Alt Kategori", "Kategori"},
				Commission:   []string{"Komisyon_%_KDV_Dahil", "Komisyon", "Komisyon Oranları"},
			},
			Presentation:  model.PresentCategoryPath,
			CountDistinct: true,
		},
	}
}
