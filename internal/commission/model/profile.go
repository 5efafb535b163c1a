package model

// Field: каноническое поле записи.
type Field string

const (
	FieldCategory     Field = "category"
	FieldSubCategory  Field = "sub_category"
	FieldProductGroup Field = "product_group"
	FieldCommission   Field = "commission"
)

// Канонические заголовки плоского CSV.
const (
	ColCategory     = "Kategori"
	ColSubCategory  = "Alt Kategori"
	ColProductGroup = "Ürün Grubu"
	ColCommission   = "Komisyon_%_KDV_Dahil"
)

// CanonicalColumns: порядок колонок выгрузки import.
var CanonicalColumns = []string{ColCategory, ColSubCategory, ColProductGroup, ColCommission}

// Presentation: как отдавать результаты поиска наружу.
type Presentation string

const (
	PresentRows          Presentation = "rows"           // каждая найденная запись
	PresentProductGroups Presentation = "product_groups" // подстрока в группе товаров, max комиссия, по алфавиту
	PresentCategoryPath  Presentation = "category_path"  // лучшая строка на группу товаров с путём, по алфавиту
)

func (p Presentation) Valid() bool {
	switch p {
	case PresentRows, PresentProductGroups, PresentCategoryPath:
		return true
	}
	return false
}

// Aliases: кандидаты имён колонок по полям, порядок = приоритет.
type Aliases struct {
	Category     []string `mapstructure:"category"`
	SubCategory  []string `mapstructure:"sub_category"`
	ProductGroup []string `mapstructure:"product_group"`
	Commission   []string `mapstructure:"commission"`
}

func (a Aliases) For(f Field) []string {
	switch f {
	case FieldCategory:
		return a.Category
	case FieldSubCategory:
		return a.SubCategory
	case FieldProductGroup:
		return a.ProductGroup
	case FieldCommission:
		return a.Commission
	}
	return nil
}

// Profile описывает маркетплейс: откуда читать, как сопоставлять колонки, как показывать.
type Profile struct {
	ID            string       `mapstructure:"id"`
	Name          string       `mapstructure:"name"`
	File          string       `mapstructure:"file"`
	Sheet         string       `mapstructure:"sheet"`      // xlsx: имя листа, пусто = первый
	HeaderRow     int          `mapstructure:"header_row"` // 1-based
	Columns       Aliases      `mapstructure:"columns"`
	Presentation  Presentation `mapstructure:"presentation"`
	CountDistinct bool         `mapstructure:"count_distinct"` // считать уникальные группы товаров, а не строки
}
