package service

import (
	"strings"
	"unicode/utf8"

	"commission-service/internal/commission/model"
)

// минимальная длина группы товаров для нечёткого сравнения
const minFuzzyCandidateLen = 2

// Index строится один раз на снимок и не меняется: нормализованные поля и уникальные группы товаров.
type Index struct {
	records []model.Record
	cat     []string
	sub     []string
	pg      []string
	groups  []string // уникальные группы товаров в порядке появления
}

func BuildIndex(records []model.Record, n *Normalizer) *Index {
	idx := &Index{
		records: records,
		cat:     make([]string, len(records)),
		sub:     make([]string, len(records)),
		pg:      make([]string, len(records)),
	}
	seen := make(map[string]struct{})
	for i, r := range records {
		idx.cat[i] = n.Normalize(r.Category)
		idx.sub[i] = n.Normalize(r.SubCategory)
		idx.pg[i] = n.Normalize(r.ProductGroup)

		g := strings.TrimSpace(r.ProductGroup)
		if utf8.RuneCountInString(g) < minFuzzyCandidateLen {
			continue
		}
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			idx.groups = append(idx.groups, g)
		}
	}
	return idx
}

func (idx *Index) Len() int                { return len(idx.records) }
func (idx *Index) Records() []model.Record { return idx.records }
func (idx *Index) ProductGroups() []string { return idx.groups }
