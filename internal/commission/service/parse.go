package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"commission-service/internal/commission/model"
)

// первый числовой фрагмент: цифры и разделители
var rxNumRun = regexp.MustCompile(`[\d.,]+`)

type parsed struct {
	v  float64
	ok bool
}

// Parser извлекает процент комиссии из ячейки. Результаты по тексту кэшируются.
type Parser struct {
	log   zerolog.Logger
	cache *lru.Cache[string, parsed]
}

func NewParser(logger zerolog.Logger, size int) (*Parser, error) {
	if size <= 0 {
		size = DefaultNormalizerCacheSize
	}
	c, err := lru.New[string, parsed](size)
	if err != nil {
		return nil, fmt.Errorf("parser cache: %w", err)
	}
	return &Parser{log: logger, cache: c}, nil
}

// Parse: ok=false означает "комиссия неизвестна", это не ошибка.
func (p *Parser) Parse(c model.RawCell) (float64, bool) {
	switch c.Kind {
	case model.CellNumber:
		v, ok := scaleNumber(c.Num)
		p.report(c.String(), v, ok)
		return v, ok
	case model.CellText:
		return p.ParseString(c.Text)
	default:
		return 0, false
	}
}

func (p *Parser) ParseString(s string) (float64, bool) {
	if r, ok := p.cache.Get(s); ok {
		return r.v, r.ok
	}
	v, ok := ParseCommission(s)
	p.cache.Add(s, parsed{v: v, ok: ok})
	p.report(s, v, ok)
	return v, ok
}

func (p *Parser) report(raw string, v float64, ok bool) {
	switch {
	case !ok:
		if strings.TrimSpace(raw) != "" {
			p.log.Debug().Str("raw", raw).Msg("commission unparseable")
		}
	case IsAnomalous(v):
		p.log.Warn().Str("raw", raw).Float64("value", v).Msg("commission outside 0..100")
	}
}

// ParseCommission разбирает значение без кэша и логов.
// "18%" → 18, "%18" → 18, "0,18" → 18, "1.234,56" → 1234.56.
func ParseCommission(s string) (float64, bool) {
	run := firstNumericRun(s)
	if run == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(normalizeSeparators(run), 64)
	if err != nil {
		return 0, false
	}
	return scaleNumber(f)
}

// IsAnomalous: значение вне [0, 100] после коррекции масштаба.
func IsAnomalous(v float64) bool { return v < 0 || v > 100 }

// доля (0, 1] → проценты
func scaleNumber(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > 0 && f <= 1 {
		f *= 100
	}
	return f, true
}

func firstNumericRun(s string) string {
	for _, m := range rxNumRun.FindAllString(s, -1) {
		if strings.ContainsAny(m, "0123456789") {
			return m
		}
	}
	return ""
}

// Оба разделителя: "." тысячи, "," десятичный. Только ",": десятичный.
// Если точек осталось несколько, десятичной считается последняя.
func normalizeSeparators(run string) string {
	hasComma := strings.Contains(run, ",")
	hasDot := strings.Contains(run, ".")
	switch {
	case hasComma && hasDot:
		run = strings.ReplaceAll(run, ".", "")
		run = strings.ReplaceAll(run, ",", ".")
	case hasComma:
		run = strings.ReplaceAll(run, ",", ".")
	}
	if strings.Count(run, ".") > 1 {
		i := strings.LastIndex(run, ".")
		run = strings.ReplaceAll(run[:i], ".", "") + run[i:]
	}
	return run
}
