package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"commission-service/internal/commission/model"
)

// EmptyQueryMode: что делать с пустым (после нормализации) запросом.
type EmptyQueryMode string

const (
	EmptyQueryNone EmptyQueryMode = "none" // свободный поиск: ничего
	EmptyQueryAll  EmptyQueryMode = "all"  // просмотр каталога: все записи
)

func (m EmptyQueryMode) Valid() bool { return m == EmptyQueryNone || m == EmptyQueryAll }

type SearchConfig struct {
	FuzzyThreshold  float64
	MaxFuzzyResults int
	Algorithm       FuzzyAlgorithm
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{FuzzyThreshold: 0.6, MaxFuzzyResults: 10, Algorithm: FuzzySequence}
}

// Engine: многоуровневый поиск по индексу снимка. Без состояния, безопасен для параллельных запросов.
type Engine struct {
	cfg  SearchConfig
	norm *Normalizer
	log  zerolog.Logger
}

func NewEngine(cfg SearchConfig, n *Normalizer, logger zerolog.Logger) *Engine {
	def := DefaultSearchConfig()
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		cfg.FuzzyThreshold = def.FuzzyThreshold
	}
	if cfg.MaxFuzzyResults <= 0 {
		cfg.MaxFuzzyResults = def.MaxFuzzyResults
	}
	if !cfg.Algorithm.Valid() {
		cfg.Algorithm = def.Algorithm
	}
	return &Engine{cfg: cfg, norm: n, log: logger}
}

func (e *Engine) Config() SearchConfig { return e.cfg }

// SearchRecords строит индекс на лету. Для снимков используйте Search с готовым индексом.
func (e *Engine) SearchRecords(records []model.Record, query string, mode EmptyQueryMode) model.SearchResult {
	return e.Search(BuildIndex(records, e.norm), query, mode)
}

// Search проходит уровни по порядку, первый непустой выигрывает.
// 1) целое слово в группе товаров 2) подстрока в группе товаров
// 3) подстрока в категории/подкатегории 4) нечёткое по группам товаров 5) подстрока где угодно
func (e *Engine) Search(idx *Index, query string, mode EmptyQueryMode) model.SearchResult {
	res := model.SearchResult{Query: query, Tier: model.TierNone}
	q := e.norm.Normalize(query)
	if q == "" {
		if mode == EmptyQueryAll {
			res.Tier = model.TierAll
			res.Hits = idx.all(model.TierAll)
		}
		return res
	}

	tiers := []struct {
		tier  model.Tier
		match func(i int) bool
	}{
		{model.TierExactWord, func(i int) bool { return containsWord(idx.pg[i], q) }},
		{model.TierPartial, func(i int) bool { return strings.Contains(idx.pg[i], q) }},
		{model.TierCategory, func(i int) bool {
			return strings.Contains(idx.cat[i], q) || strings.Contains(idx.sub[i], q)
		}},
	}
	for _, t := range tiers {
		if hits := idx.filter(t.tier, t.match); len(hits) > 0 {
			return e.done(res, t.tier, hits)
		}
	}

	if hits := e.fuzzy(idx, collapseSpaces(query)); len(hits) > 0 {
		return e.done(res, model.TierFuzzy, hits)
	}

	broad := idx.filter(model.TierBroad, func(i int) bool {
		return strings.Contains(idx.cat[i], q) || strings.Contains(idx.sub[i], q) || strings.Contains(idx.pg[i], q)
	})
	if len(broad) > 0 {
		return e.done(res, model.TierBroad, broad)
	}

	e.log.Debug().Str("query", query).Msg("no match")
	return res
}

func (e *Engine) done(res model.SearchResult, tier model.Tier, hits []model.Hit) model.SearchResult {
	e.log.Debug().Str("query", res.Query).Str("tier", string(tier)).Int("hits", len(hits)).Msg("search")
	res.Tier = tier
	res.Hits = hits
	return res
}

// fuzzy сравнивает запрос в исходном регистре с уникальными группами товаров.
// Лучшие группы только отбирают кандидатов, записи идут в исходном порядке.
func (e *Engine) fuzzy(idx *Index, query string) []model.Hit {
	matches := closeMatches(query, idx.groups, e.cfg.MaxFuzzyResults, e.cfg.FuzzyThreshold, e.cfg.Algorithm)
	if len(matches) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		scores[m.value] = m.score
	}
	var hits []model.Hit
	for i, r := range idx.records {
		score, ok := scores[strings.TrimSpace(r.ProductGroup)]
		if !ok {
			continue
		}
		hits = append(hits, model.Hit{Record: idx.records[i], Tier: model.TierFuzzy, Score: &score})
	}
	return hits
}

func (idx *Index) filter(tier model.Tier, match func(i int) bool) []model.Hit {
	var hits []model.Hit
	for i := range idx.records {
		if match(i) {
			hits = append(hits, model.Hit{Record: idx.records[i], Tier: tier})
		}
	}
	return hits
}

func (idx *Index) all(tier model.Tier) []model.Hit {
	return idx.filter(tier, func(int) bool { return true })
}

// containsWord: вхождение w, ограниченное границами слова с обеих сторон (как \b).
func containsWord(text, w string) bool {
	if w == "" {
		return false
	}
	for off := 0; off+len(w) <= len(text); {
		i := strings.Index(text[off:], w)
		if i < 0 {
			return false
		}
		start := off + i
		if isBoundary(text, start) && isBoundary(text, start+len(w)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		off = start + size
	}
	return false
}

// граница: по разные стороны позиции "словесный" и "несловесный" символ
func isBoundary(s string, pos int) bool {
	before, after := false, false
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:pos])
		before = isWordRune(r)
	}
	if pos < len(s) {
		r, _ := utf8.DecodeRuneInString(s[pos:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
