package service

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"commission-service/internal/commission/model"
)

// Report: что произошло со строками при сверке.
type Report struct {
	Rows           int `json:"rows"`
	Kept           int `json:"kept"`
	Empty          int `json:"empty"`          // все три текстовых поля пусты
	NoProductGroup int `json:"noProductGroup"` // нет группы товаров
	Duplicates     int `json:"duplicates"`
	Unparseable    int `json:"unparseable"`
	Anomalous      int `json:"anomalous"`
}

// Reconciled: канонические записи + какие колонки реально использованы.
type Reconciled struct {
	Records []model.Record
	Columns map[model.Field]string
	Report  Report
}

type columnMap struct {
	category, subCategory, productGroup, commission int
}

// Reconciler приводит таблицы маркетплейсов к четырём каноническим полям.
type Reconciler struct {
	norm   *Normalizer
	parser *Parser
	log    zerolog.Logger
}

func NewReconciler(n *Normalizer, p *Parser, logger zerolog.Logger) *Reconciler {
	return &Reconciler{norm: n, parser: p, log: logger}
}

func (rc *Reconciler) Reconcile(t model.Table, p model.Profile) (Reconciled, error) {
	cm, err := rc.resolveColumns(t.Columns, p)
	if err != nil {
		return Reconciled{}, err
	}

	res := Reconciled{Columns: rc.columnNames(t.Columns, cm)}
	rep := &res.Report
	seen := make(map[string]struct{}, len(t.Rows))
	records := make([]model.Record, 0, len(t.Rows))

	for i := range t.Rows {
		rep.Rows++
		rec := model.Record{
			Category:     rc.text(t, i, cm.category),
			SubCategory:  rc.text(t, i, cm.subCategory),
			ProductGroup: rc.text(t, i, cm.productGroup),
		}
		if rec.Category == "" && rec.SubCategory == "" && rec.ProductGroup == "" {
			rep.Empty++
			continue
		}
		if rec.ProductGroup == "" {
			rep.NoProductGroup++
			continue
		}

		if cm.commission >= 0 {
			cell := t.Cell(i, cm.commission)
			if v, ok := rc.parser.Parse(cell); ok {
				rec.Commission = model.Float(v)
				if IsAnomalous(v) {
					rep.Anomalous++
				}
			} else if !cell.IsNull() {
				rep.Unparseable++
			}
		}

		k := recordKey(rec)
		if _, dup := seen[k]; dup {
			rep.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		records = append(records, rec)
	}

	rep.Kept = len(records)
	res.Records = records

	rc.log.Info().
		Str("marketplace", p.ID).
		Interface("columns", res.Columns).
		Int("rows", rep.Rows).
		Int("kept", rep.Kept).
		Int("empty", rep.Empty+rep.NoProductGroup).
		Int("duplicates", rep.Duplicates).
		Int("unparseable", rep.Unparseable).
		Int("anomalous", rep.Anomalous).
		Msg("reconciled")
	return res, nil
}

// resolveColumns пробует сначала канонические заголовки целиком, иначе алиасы профиля.
func (rc *Reconciler) resolveColumns(cols []string, p model.Profile) (columnMap, error) {
	normCols := make([]string, len(cols))
	for i, c := range cols {
		normCols[i] = rc.norm.Normalize(c)
	}

	canon := columnMap{
		category:     rc.exactColumn(normCols, []string{model.ColCategory}),
		subCategory:  rc.exactColumn(normCols, []string{model.ColSubCategory}),
		productGroup: rc.exactColumn(normCols, []string{model.ColProductGroup}),
		commission:   rc.exactColumn(normCols, []string{model.ColCommission}),
	}
	if canon.category >= 0 && canon.subCategory >= 0 && canon.productGroup >= 0 && canon.commission >= 0 {
		return canon, nil
	}

	cm := columnMap{
		category:     rc.ResolveColumn(normCols, p.Columns.Category),
		subCategory:  rc.ResolveColumn(normCols, p.Columns.SubCategory),
		productGroup: rc.ResolveColumn(normCols, p.Columns.ProductGroup),
		commission:   rc.ResolveColumn(normCols, p.Columns.Commission),
	}

	if cm.productGroup < 0 {
		return cm, &model.MissingColumnError{
			Marketplace: p.ID,
			Field:       model.FieldProductGroup,
			Candidates:  p.Columns.ProductGroup,
			Available:   cols,
		}
	}
	if cm.category < 0 && cm.subCategory < 0 {
		cands := append(append([]string{}, p.Columns.Category...), p.Columns.SubCategory...)
		return cm, &model.MissingColumnError{
			Marketplace: p.ID,
			Field:       model.FieldCategory,
			Candidates:  cands,
			Available:   cols,
		}
	}

	// одна и та же колонка не может быть и категорией, и подкатегорией
	switch {
	case cm.category == cm.subCategory:
		cm.subCategory = -1
	case cm.category < 0:
		cm.category, cm.subCategory = cm.subCategory, -1
	}
	return cm, nil
}

// ResolveColumn: индекс колонки по списку алиасов, -1 если не нашли.
// 1) точное совпадение после нормализации, алиасы по приоритету;
// 2) вхождение в любую сторону, алиасы по приоритету.
func (rc *Reconciler) ResolveColumn(normCols []string, candidates []string) int {
	if i := rc.exactColumn(normCols, candidates); i >= 0 {
		return i
	}
	for _, cand := range candidates {
		nc := rc.norm.Normalize(cand)
		if nc == "" {
			continue
		}
		for i, col := range normCols {
			if col == "" {
				continue
			}
			if strings.Contains(col, nc) || strings.Contains(nc, col) {
				return i
			}
		}
	}
	return -1
}

func (rc *Reconciler) exactColumn(normCols []string, candidates []string) int {
	for _, cand := range candidates {
		nc := rc.norm.Normalize(cand)
		if nc == "" {
			continue
		}
		for i, col := range normCols {
			if col == nc {
				return i
			}
		}
	}
	return -1
}

func (rc *Reconciler) columnNames(cols []string, cm columnMap) map[model.Field]string {
	name := func(i int) string {
		if i < 0 || i >= len(cols) {
			return ""
		}
		return cols[i]
	}
	return map[model.Field]string{
		model.FieldCategory:     name(cm.category),
		model.FieldSubCategory:  name(cm.subCategory),
		model.FieldProductGroup: name(cm.productGroup),
		model.FieldCommission:   name(cm.commission),
	}
}

// text очищает текст ячейки; "nan"/"none" считаются пустыми.
func (rc *Reconciler) text(t model.Table, row, col int) string {
	if col < 0 {
		return ""
	}
	c := t.Cell(row, col)
	if c.IsNull() || rc.norm.NormalizeCell(c) == "" {
		return ""
	}
	return collapseSpaces(c.String())
}

func recordKey(r model.Record) string {
	c := "-"
	if r.Commission != nil {
		c = strconv.FormatFloat(*r.Commission, 'g', -1, 64)
	}
	return r.Category + "\x00" + r.SubCategory + "\x00" + r.ProductGroup + "\x00" + c
}
