package service

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"commission-service/internal/commission/model"
)

// Categories возвращает уникальные непустые категории по алфавиту.
func Categories(records []model.Record) []string {
	return distinct(records, func(model.Record) bool { return true }, func(r model.Record) string { return r.Category })
}

func SubCategories(records []model.Record, category string) []string {
	return distinct(records,
		func(r model.Record) bool { return r.Category == category },
		func(r model.Record) string { return r.SubCategory })
}

func ProductGroupNames(records []model.Record, category, sub string) []string {
	return distinct(records,
		func(r model.Record) bool { return r.Category == category && r.SubCategory == sub },
		func(r model.Record) string { return r.ProductGroup })
}

// FindCommission: комиссия первой записи с точным путём. found=false, если записи нет или комиссия неизвестна.
func FindCommission(records []model.Record, category, sub, group string) (float64, bool) {
	for _, r := range records {
		if r.Category == category && r.SubCategory == sub && r.ProductGroup == group {
			if r.Commission == nil {
				return 0, false
			}
			return *r.Commission, true
		}
	}
	return 0, false
}

// ProductGroupCommissions: max комиссия по группе товаров, фильтр по подстроке, по алфавиту.
func (s *Service) ProductGroupCommissions(records []model.Record, query string) []model.Group {
	q := s.Norm.Normalize(query)
	if q != "" {
		filtered := make([]model.Record, 0, len(records))
		for _, r := range records {
			if strings.Contains(s.Norm.Normalize(r.ProductGroup), q) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return s.Resolver.ProductGroups(records, OrderNameAsc)
}

// FormatPercent: 18 → "18,00%", nil → "".
func FormatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.Replace(strconv.FormatFloat(*v, 'f', 2, 64), ".", ",", 1) + "%"
}

type Stats struct {
	Records        int      `json:"records"`
	Categories     int      `json:"categories"`
	SubCategories  int      `json:"subCategories"`
	ProductGroups  int      `json:"productGroups"`
	WithCommission int      `json:"withCommission"`
	Unknown        int      `json:"unknownCommission"`
	Min            *float64 `json:"minCommission,omitempty"`
	Max            *float64 `json:"maxCommission,omitempty"`
	Avg            *float64 `json:"avgCommission,omitempty"`
}

func ComputeStats(records []model.Record) Stats {
	st := Stats{Records: len(records)}
	cats, subs, groups := map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	var sum float64
	for _, r := range records {
		if r.Category != "" {
			cats[r.Category] = struct{}{}
		}
		if r.SubCategory != "" {
			subs[r.SubCategory] = struct{}{}
		}
		groups[r.ProductGroup] = struct{}{}

		if r.Commission == nil {
			st.Unknown++
			continue
		}
		v := *r.Commission
		st.WithCommission++
		sum += v
		if st.Min == nil || v < *st.Min {
			st.Min = model.Float(v)
		}
		if st.Max == nil || v > *st.Max {
			st.Max = model.Float(v)
		}
	}
	st.Categories, st.SubCategories, st.ProductGroups = len(cats), len(subs), len(groups)
	if st.WithCommission > 0 {
		st.Avg = model.Float(sum / float64(st.WithCommission))
	}
	return st
}

var stopWords = map[string]struct{}{"için": {}, "ile": {}, "olan": {}, "her": {}, "tüm": {}}

// Suggestions собирает самые частые слова (от 3 букв) в группах товаров.
func Suggestions(records []model.Record, limit int) []string {
	if limit <= 0 {
		return nil
	}
	freq := map[string]int{}
	var order []string
	for _, r := range records {
		words := strings.FieldsFunc(strings.ToLower(r.ProductGroup), func(c rune) bool { return !isWordRune(c) })
		for _, w := range words {
			if utf8.RuneCountInString(w) < 3 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			if freq[w] == 0 {
				order = append(order, w)
			}
			freq[w]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func distinct(records []model.Record, keep func(model.Record) bool, field func(model.Record) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		if !keep(r) {
			continue
		}
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// CanonicalRows: записи в виде строк плоского CSV (порядок model.CanonicalColumns).
func CanonicalRows(records []model.Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		c := ""
		if r.Commission != nil {
			c = strconv.FormatFloat(*r.Commission, 'f', -1, 64)
		}
		out[i] = []string{r.Category, r.SubCategory, r.ProductGroup, c}
	}
	return out
}
