package service

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyAlgorithm: метрика похожести для нечёткого уровня поиска.
type FuzzyAlgorithm string

const (
	FuzzySequence FuzzyAlgorithm = "sequence" // difflib SequenceMatcher.ratio
	FuzzyDamerau  FuzzyAlgorithm = "damerau"  // 1 - DL/maxLen
)

func (a FuzzyAlgorithm) Valid() bool { return a == FuzzySequence || a == FuzzyDamerau }

type scored struct {
	value string
	score float64
}

// closeMatches: кандидаты с похожестью >= cutoff, лучшие первыми, не больше n.
// При равной похожести порядок исходный.
func closeMatches(query string, candidates []string, n int, cutoff float64, algo FuzzyAlgorithm) []scored {
	if n <= 0 || query == "" {
		return nil
	}
	var out []scored
	if algo == FuzzyDamerau {
		for _, c := range candidates {
			if s := damerauRatio(query, c); s >= cutoff {
				out = append(out, scored{c, s})
			}
		}
	} else {
		// как get_close_matches: seq2 = запрос, seq1 = кандидат
		m := difflib.NewMatcher(nil, splitRunes(query))
		for _, c := range candidates {
			m.SetSeq1(splitRunes(c))
			if m.RealQuickRatio() >= cutoff && m.QuickRatio() >= cutoff {
				if s := m.Ratio(); s >= cutoff {
					out = append(out, scored{c, s})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SequenceRatio: отношение SequenceMatcher по символам.
func SequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// normalized Damerau-Levenshtein similarity in [0..1]
func damerauRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return 1 - float64(damerauLevenshtein(a, b))/float64(m)
}
