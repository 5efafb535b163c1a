package service

import (
	"sort"

	"commission-service/internal/commission/model"
)

// Order: итоговая сортировка групп.
type Order string

const (
	OrderCommissionDesc Order = "commission" // лучшая комиссия первой, nil в конце
	OrderNameAsc        Order = "name"       // по группе товаров, для просмотра списка
)

const DefaultMaxAlternatives = 5

type ResolverConfig struct {
	MaxAlternatives  int
	ExcludeAnomalous bool // значения вне 0..100 не участвуют в максимуме
}

// Resolver схлопывает дубли групп до максимальной комиссии.
// При равных комиссиях выигрывает группа, встреченная раньше.
type Resolver struct {
	cfg  ResolverConfig
	norm *Normalizer
}

func NewResolver(cfg ResolverConfig, n *Normalizer) *Resolver {
	if cfg.MaxAlternatives <= 0 {
		cfg.MaxAlternatives = DefaultMaxAlternatives
	}
	return &Resolver{cfg: cfg, norm: n}
}

// Aggregate: группы (категория, подкатегория, группа товаров) с max комиссией.
func (r *Resolver) Aggregate(records []model.Record, order Order) []model.Group {
	groups := r.group(records, func(rec model.Record) string {
		return rec.Category + "\x00" + rec.SubCategory + "\x00" + rec.ProductGroup
	})
	r.sort(groups, order)
	return groups
}

// ProductGroups: группировка только по группе товаров; путь берётся из строки с максимумом.
func (r *Resolver) ProductGroups(records []model.Record, order Order) []model.Group {
	groups := r.group(records, func(rec model.Record) string { return rec.ProductGroup })
	r.sort(groups, order)
	return groups
}

func (r *Resolver) BestMatch(records []model.Record) *model.Group {
	groups := r.Aggregate(records, OrderCommissionDesc)
	if len(groups) == 0 {
		return nil
	}
	best := groups[0]
	return &best
}

// Alternatives отдаёт все группы кроме exclude, по убыванию комиссии, не больше MaxAlternatives.
func (r *Resolver) Alternatives(records []model.Record, exclude *model.Group) []model.Group {
	groups := r.Aggregate(records, OrderCommissionDesc)
	out := make([]model.Group, 0, min(len(groups), r.cfg.MaxAlternatives))
	for _, g := range groups {
		if exclude != nil && g.SameTuple(*exclude) {
			continue
		}
		out = append(out, g)
		if len(out) == r.cfg.MaxAlternatives {
			break
		}
	}
	return out
}

func (r *Resolver) group(records []model.Record, key func(model.Record) string) []model.Group {
	pos := make(map[string]int)
	var out []model.Group
	for _, rec := range records {
		k := key(rec)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, model.Group{
				Category:     rec.Category,
				SubCategory:  rec.SubCategory,
				ProductGroup: rec.ProductGroup,
			})
		}
		g := &out[i]
		g.Rows++

		v := rec.Commission
		if v == nil || (r.cfg.ExcludeAnomalous && IsAnomalous(*v)) {
			continue
		}
		if g.Commission == nil || *v > *g.Commission {
			g.Commission = model.Float(*v)
			g.Category, g.SubCategory = rec.Category, rec.SubCategory
		}
	}
	return out
}

func (r *Resolver) sort(groups []model.Group, order Order) {
	if order == OrderNameAsc {
		keys := make([]string, len(groups))
		for i, g := range groups {
			keys[i] = r.norm.Normalize(g.ProductGroup)
		}
		idx := make([]int, len(groups))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			ka, kb := keys[idx[a]], keys[idx[b]]
			if ka != kb {
				return ka < kb
			}
			return groups[idx[a]].ProductGroup < groups[idx[b]].ProductGroup
		})
		sorted := make([]model.Group, len(groups))
		for i, j := range idx {
			sorted[i] = groups[j]
		}
		copy(groups, sorted)
		return
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ca, cb := groups[a].Commission, groups[b].Commission
		switch {
		case ca == nil:
			return false
		case cb == nil:
			return true
		default:
			return *ca > *cb
		}
	})
}
