// Package handler: HTTP-слой поверх store и service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"commission-service/internal/cache"
	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
	"commission-service/internal/commission/store"
	"commission-service/internal/middleware"
)

type Options struct {
	DefaultMarketplace string
	CacheTTL           time.Duration
	LookupEmptyQuery   service.EmptyQueryMode // /api/lookup с пустым q; /api/search всегда отдаёт всё
}

type Handler struct {
	store *store.Store
	svc   *service.Service
	cache cache.Client
	opt   Options
	log   zerolog.Logger
}

// New принимает nil вместо кэша, тогда ответы не кэшируются.
func New(st *store.Store, svc *service.Service, c cache.Client, opt Options, logger zerolog.Logger) *Handler {
	if opt.DefaultMarketplace == "" {
		if ps := st.Profiles(); len(ps) > 0 {
			opt.DefaultMarketplace = ps[0].ID
		}
	}
	if !opt.LookupEmptyQuery.Valid() {
		opt.LookupEmptyQuery = service.EmptyQueryNone
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Handler{store: st, svc: svc, cache: c, opt: opt, log: logger}
}

// Invalidate сбрасывает закэшированные ответы маркетплейса; вешается на store.OnReload.
func (h *Handler) Invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, kind := range []string{"search", "lookup"} {
		if err := h.cache.DeleteByPrefix(ctx, cache.Key(kind, id)+":"); err != nil {
			h.log.Warn().Err(err).Str("marketplace", id).Msg("cache invalidate")
		}
	}
}

// Item: элемент списка для фронта.
type Item struct {
	Category            string     `json:"category"`
	SubCategory         string     `json:"subCategory"`
	ProductGroup        string     `json:"productGroup"`
	CommissionPercent   *float64   `json:"commissionPercent"`
	CommissionText      string     `json:"commissionText"`
	DisplayProductGroup string     `json:"displayProductGroup"`
	Tier                model.Tier `json:"tier,omitempty"`
	Score               *float64   `json:"score,omitempty"`
}

func groupItem(g model.Group, withPath bool) Item {
	it := Item{
		ProductGroup:        g.ProductGroup,
		CommissionPercent:   g.Commission,
		CommissionText:      service.FormatPercent(g.Commission),
		DisplayProductGroup: g.ProductGroup,
	}
	if withPath {
		it.Category, it.SubCategory = g.Category, g.SubCategory
		it.DisplayProductGroup = g.Path()
	}
	return it
}

func hitItem(hit model.Hit) Item {
	return Item{
		Category:            hit.Category,
		SubCategory:         hit.SubCategory,
		ProductGroup:        hit.ProductGroup,
		CommissionPercent:   hit.Commission,
		CommissionText:      service.FormatPercent(hit.Commission),
		DisplayProductGroup: hit.Path(),
		Tier:                hit.Tier,
		Score:               hit.Score,
	}
}

func (h *Handler) marketplace(r *http.Request) string {
	id := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("marketplace")))
	if id == "" {
		return h.opt.DefaultMarketplace
	}
	return id
}

// ready возвращает снимок с данными; иначе ответ с ошибкой уже записан.
func (h *Handler) ready(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	snap, err := h.store.Ready(h.marketplace(r))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return snap, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrUnknownMarketplace), errors.Is(err, model.ErrInvalidSalePrice):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrMarketplaceUnavailable):
		status = http.StatusServiceUnavailable
	}
	log := middleware.RequestLogger(r, h.log)
	if status >= 500 {
		log.Error().Err(err).Msg("request failed")
	} else {
		log.Debug().Err(err).Msg("bad request")
	}
	writeError(w, status, err.Error())
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// cached отдаёт ответ из кэша или строит его через build и кладёт в кэш.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, key string, build func() any) {
	log := middleware.RequestLogger(r, h.log)
	b, err := h.cache.Get(r.Context(), key)
	switch {
	case err == nil:
		w.Header().Set("X-Cache", "HIT")
		writeRaw(w, b)
		return
	case !errors.Is(err, cache.ErrCacheMiss):
		log.Warn().Err(err).Str("key", key).Msg("cache get")
	}

	b, err = json.MarshalIndent(build(), "", "  ")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b = append(b, '\n')
	if err := h.cache.Set(r.Context(), key, b, h.opt.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set")
	}
	w.Header().Set("X-Cache", "MISS")
	writeRaw(w, b)
}

func writeRaw(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on", "evet":
		return true
	case "0", "false", "no", "n", "off", "hayir", "hayır":
		return false
	default:
		return def
	}
}
