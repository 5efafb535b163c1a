package model

import (
	"strconv"
	"strings"
)

// CellKind: тип сырой ячейки, определяется при чтении таблицы.
type CellKind uint8

const (
	CellNull CellKind = iota
	CellText
	CellNumber
)

// RawCell хранит значение ячейки исходной таблицы (Null | Text | Number).
type RawCell struct {
	Kind CellKind
	Text string
	Num  float64
}

func NullCell() RawCell            { return RawCell{Kind: CellNull} }
func TextCell(s string) RawCell    { return RawCell{Kind: CellText, Text: s} }
func NumberCell(f float64) RawCell { return RawCell{Kind: CellNumber, Num: f} }
func (c RawCell) IsNull() bool     { return c.Kind == CellNull }
func (c RawCell) IsNumber() bool   { return c.Kind == CellNumber }

// CellFromString превращает пустую строку в Null, остальное в Text как есть.
func CellFromString(s string) RawCell {
	if s == "" {
		return NullCell()
	}
	return TextCell(s)
}

func (c RawCell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Table это прямоугольная сырая таблица, заголовки + строки ячеек.
type Table struct {
	Columns []string
	Rows    [][]RawCell
}

// Cell возвращает ячейку или Null, если строка короче заголовка.
func (t Table) Cell(row, col int) RawCell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return NullCell()
	}
	return t.Rows[row][col]
}

// ColumnIndex ищет колонку по точному имени, -1 если нет.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record: каноническая запись после сверки схемы.
type Record struct {
	Category     string   `json:"category"`
	SubCategory  string   `json:"subCategory"`
	ProductGroup string   `json:"productGroup"`
	Commission   *float64 `json:"commissionPercent"` // nil = комиссия неизвестна
}

// Path: "Категория → Подкатегория → Группа", пустые части пропускаются.
func (r Record) Path() string { return joinPath(r.Category, r.SubCategory, r.ProductGroup) }

// Tier: уровень, на котором сработал поиск.
type Tier string

const (
	TierExactWord Tier = "exact_word"
	TierPartial   Tier = "partial"
	TierCategory  Tier = "category"
	TierFuzzy     Tier = "fuzzy"
	TierBroad     Tier = "broad"
	TierAll       Tier = "all"  // пустой запрос в режиме "вернуть всё"
	TierNone      Tier = "none" // ничего не найдено
)

type Hit struct {
	Record
	Tier  Tier     `json:"tier"`
	Score *float64 `json:"score,omitempty"` // похожесть для fuzzy
}

type SearchResult struct {
	Query string `json:"query"`
	Tier  Tier   `json:"tier"`
	Hits  []Hit  `json:"hits"`
}

func (r SearchResult) Empty() bool { return len(r.Hits) == 0 }

// Records возвращает записи попаданий в исходном порядке.
func (r SearchResult) Records() []Record {
	out := make([]Record, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Record
	}
	return out
}

// Group: схлопнутая группа (категория, подкатегория, группа товаров) с максимальной комиссией.
type Group struct {
	Category     string   `json:"category"`
	SubCategory  string   `json:"subCategory"`
	ProductGroup string   `json:"productGroup"`
	Commission   *float64 `json:"commissionPercent"`
	Rows         int      `json:"rows"` // сколько исходных записей вошло в группу
}

func (g Group) Path() string { return joinPath(g.Category, g.SubCategory, g.ProductGroup) }

func (g Group) SameTuple(o Group) bool {
	return g.Category == o.Category && g.SubCategory == o.SubCategory && g.ProductGroup == o.ProductGroup
}

func joinPath(parts ...string) string {
	keep := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, " → ")
}

// Float возвращает указатель на копию значения.
func Float(v float64) *float64 { return &v }
