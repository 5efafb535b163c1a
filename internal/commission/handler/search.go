package handler

import (
	"net/http"
	"strings"

	"commission-service/internal/cache"
	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
)

type listResponse struct {
	Success     bool       `json:"success"`
	Data        any        `json:"data"`
	Count       int        `json:"count"`
	Marketplace string     `json:"marketplace"`
	Query       string     `json:"query,omitempty"`
	Tier        model.Tier `json:"tier,omitempty"`
}

// Search: GET /api/search?marketplace&q. Пустой q отдаёт весь каталог.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	q := cacheQuery(r)
	key := cache.Key("search", snap.Profile.ID, snap.Fingerprint.String(), q)
	h.cached(w, r, key, func() any {
		var (
			items []Item
			tier  model.Tier
		)
		if snap.Profile.Presentation == model.PresentProductGroups {
			items, tier = h.productGroupList(snap.Index.Records(), q)
		} else {
			res := h.svc.Engine.Search(snap.Index, q, service.EmptyQueryAll)
			items, tier = h.present(snap.Profile, res), res.Tier
		}
		return listResponse{
			Success:     true,
			Data:        items,
			Count:       len(items),
			Marketplace: snap.Profile.ID,
			Query:       q,
			Tier:        tier,
		}
	})
}

// productGroupList: только подстрока в группе товаров, без уровней поиска.
// Запрос по одной категории ничего не находит.
func (h *Handler) productGroupList(records []model.Record, q string) ([]Item, model.Tier) {
	groups := h.svc.ProductGroupCommissions(records, q)
	items := make([]Item, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupItem(g, false))
	}
	switch {
	case len(items) == 0:
		return items, model.TierNone
	case h.svc.Norm.Normalize(q) == "":
		return items, model.TierAll
	default:
		return items, model.TierPartial
	}
}

// present раскладывает попадания по правилу показа маркетплейса.
func (h *Handler) present(p model.Profile, res model.SearchResult) []Item {
	switch p.Presentation {
	case model.PresentCategoryPath:
		groups := h.svc.Resolver.ProductGroups(res.Records(), service.OrderNameAsc)
		items := make([]Item, 0, len(groups))
		for _, g := range groups {
			items = append(items, groupItem(g, true))
		}
		return items
	default:
		items := make([]Item, 0, len(res.Hits))
		for _, hit := range res.Hits {
			items = append(items, hitItem(hit))
		}
		return items
	}
}

type lookupResponse struct {
	Success      bool       `json:"success"`
	Marketplace  string     `json:"marketplace"`
	Query        string     `json:"query"`
	Tier         model.Tier `json:"tier"`
	Found        bool       `json:"found"`
	Best         *Item      `json:"best"`
	Alternatives []Item     `json:"alternatives"`
	Groups       int        `json:"groups"`
	Hits         int        `json:"hits"`
}

// Lookup отвечает на GET /api/lookup?marketplace&q лучшей группой и альтернативами.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	q := cacheQuery(r)
	key := cache.Key("lookup", snap.Profile.ID, snap.Fingerprint.String(), q)
	h.cached(w, r, key, func() any {
		lk := h.svc.Lookup(snap.Index, q, h.opt.LookupEmptyQuery)
		resp := lookupResponse{
			Success:      true,
			Marketplace:  snap.Profile.ID,
			Query:        q,
			Tier:         lk.Result.Tier,
			Found:        lk.Best != nil,
			Alternatives: make([]Item, 0, len(lk.Alternatives)),
			Groups:       lk.Groups,
			Hits:         len(lk.Result.Hits),
		}
		if lk.Best != nil {
			best := groupItem(*lk.Best, true)
			resp.Best = &best
		}
		for _, g := range lk.Alternatives {
			resp.Alternatives = append(resp.Alternatives, groupItem(g, true))
		}
		return resp
	})
}

// cacheQuery схлопывает пробелы в q. Регистр сохраняется, нечёткий уровень его учитывает.
func cacheQuery(r *http.Request) string {
	return strings.Join(strings.Fields(r.URL.Query().Get("q")), " ")
}
