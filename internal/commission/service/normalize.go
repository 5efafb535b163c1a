package service

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"commission-service/internal/commission/model"
)

const DefaultNormalizerCacheSize = 1000

// Турецкие буквы → латиница. Применяется ДО нижнего регистра, иначе İ даёт "i̇".
var trFold = strings.NewReplacer(
	"ı", "i", "ğ", "g", "ü", "u", "ş", "s", "ö", "o", "ç", "c",
	"İ", "I", "Ğ", "G", "Ü", "U", "Ş", "S", "Ö", "O", "Ç", "C",
)

// Normalizer приводит текст к виду для сравнения. Кэш ограничен и принадлежит экземпляру.
type Normalizer struct {
	cache *lru.Cache[string, string]
}

// NewNormalizer: size <= 0 → кэш по умолчанию.
func NewNormalizer(size int) (*Normalizer, error) {
	if size <= 0 {
		size = DefaultNormalizerCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("normalizer cache: %w", err)
	}
	return &Normalizer{cache: c}, nil
}

// MustNormalizer паникует при ошибке. Для тестов и значений по умолчанию.
func MustNormalizer(size int) *Normalizer {
	n, err := NewNormalizer(size)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	if v, ok := n.cache.Get(s); ok {
		return v
	}
	out := foldText(s)
	n.cache.Add(s, out)
	return out
}

// NormalizeCell: Null → "", число → его десятичная запись.
func (n *Normalizer) NormalizeCell(c model.RawCell) string {
	if c.IsNull() {
		return ""
	}
	return n.Normalize(c.String())
}

func (n *Normalizer) Len() int { return n.cache.Len() }

func foldText(s string) string {
	s = norm.NFC.String(s)
	s = trFold.Replace(s)
	s = strings.ToLower(s)
	s = collapseSpaces(s)
	switch s {
	case "nan", "none":
		return ""
	}
	return s
}

// Схлопывание пробелов (включая NBSP) + trim
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
