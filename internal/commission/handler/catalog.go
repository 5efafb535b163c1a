package handler

import (
	"net/http"
	"strings"

	"commission-service/internal/commission/service"
	"commission-service/internal/middleware"
)

// Health отдаёт состояние всех маркетплейсов (GET /api/health).
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "API OK",
		"marketplaces": h.store.Marketplaces(),
	})
}

func (h *Handler) Marketplaces(w http.ResponseWriter, r *http.Request) {
	sums := h.store.Marketplaces()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    sums,
		"count":   len(sums),
	})
}

// Reload: POST /api/reload; ?force=0 перечитывает только изменившиеся файлы.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	changed, err := h.store.Refresh(r.Context(), toBool(r.URL.Query().Get("force"), true))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	log := middleware.RequestLogger(r, h.log)
	log.Info().Strs("marketplaces", changed).Msg("reload")
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"reloaded":     len(changed) > 0,
		"marketplaces": changed,
	})
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	writeList(w, snap.Profile.ID, service.Categories(snap.Records))
}

func (h *Handler) SubCategories(w http.ResponseWriter, r *http.Request) {
	category, ok := required(w, r, "category")
	if !ok {
		return
	}
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	writeList(w, snap.Profile.ID, service.SubCategories(snap.Records, category))
}

// ProductGroups: GET /api/product-groups?category&subCategory. Пустая подкатегория допустима.
func (h *Handler) ProductGroups(w http.ResponseWriter, r *http.Request) {
	category, ok := required(w, r, "category")
	if !ok {
		return
	}
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	sub := strings.TrimSpace(r.URL.Query().Get("subCategory"))
	writeList(w, snap.Profile.ID, service.ProductGroupNames(snap.Records, category, sub))
}

// CommissionRate: GET /api/commission-rate?category&subCategory&productGroup.
func (h *Handler) CommissionRate(w http.ResponseWriter, r *http.Request) {
	category, ok := required(w, r, "category")
	if !ok {
		return
	}
	group, ok := required(w, r, "productGroup")
	if !ok {
		return
	}
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	sub := strings.TrimSpace(r.URL.Query().Get("subCategory"))
	v, found := service.FindCommission(snap.Records, category, sub, group)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data":        v,
		"found":       found,
		"marketplace": snap.Profile.ID,
	})
}

// ProductGroupCommissions, GET /api/product-group-commissions?q. Max комиссия по группе товаров.
func (h *Handler) ProductGroupCommissions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	groups := h.svc.ProductGroupCommissions(snap.Records, r.URL.Query().Get("q"))
	items := make([]Item, 0, len(groups))
	for _, g := range groups {
		items = append(items, groupItem(g, false))
	}
	writeList(w, snap.Profile.ID, items)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"marketplace": snap.Profile.ID,
		"data":        service.ComputeStats(snap.Records),
		"report":      snap.Report,
		"columns":     snap.Columns,
		"loadedAt":    snap.LoadedAt,
	})
}

// Suggestions, GET /api/suggestions?limit. Частые слова из групп товаров.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.ready(w, r)
	if !ok {
		return
	}
	limit := atoi(r.URL.Query().Get("limit"), 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	writeList(w, snap.Profile.ID, service.Suggestions(snap.Records, limit))
}

func writeList[T any](w http.ResponseWriter, marketplace string, data []T) {
	if data == nil {
		data = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Success:     true,
		Data:        data,
		Count:       len(data),
		Marketplace: marketplace,
	})
}

func required(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		writeError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return v, true
}
