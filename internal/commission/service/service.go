package service

import (
	"github.com/rs/zerolog"

	"commission-service/internal/commission/model"
)

type Options struct {
	CacheSize int // LRU нормализатора и парсера
	Search    SearchConfig
	Resolver  ResolverConfig
}

// Service собирает ядро: нормализация, разбор комиссий, сверка схемы, поиск, агрегация.
type Service struct {
	Norm       *Normalizer
	Parser     *Parser
	Reconciler *Reconciler
	Engine     *Engine
	Resolver   *Resolver
}

func New(opt Options, logger zerolog.Logger) (*Service, error) {
	n, err := NewNormalizer(opt.CacheSize)
	if err != nil {
		return nil, err
	}
	p, err := NewParser(logger, opt.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		Norm:       n,
		Parser:     p,
		Reconciler: NewReconciler(n, p, logger),
		Engine:     NewEngine(opt.Search, n, logger),
		Resolver:   NewResolver(opt.Resolver, n),
	}, nil
}

// Lookup это поиск, лучшая группа и альтернативы за один вызов.
type Lookup struct {
	Result       model.SearchResult
	Best         *model.Group
	Alternatives []model.Group
	Groups       int // всего групп в результате
}

func (s *Service) Lookup(idx *Index, query string, mode EmptyQueryMode) Lookup {
	res := s.Engine.Search(idx, query, mode)
	out := Lookup{Result: res}
	if res.Empty() {
		return out
	}
	recs := res.Records()
	out.Groups = len(s.Resolver.Aggregate(recs, OrderCommissionDesc))
	out.Best = s.Resolver.BestMatch(recs)
	out.Alternatives = s.Resolver.Alternatives(recs, out.Best)
	return out
}

// BuildIndex строит индекс тем же нормализатором, что и поиск.
func (s *Service) BuildIndex(records []model.Record) *Index {
	return BuildIndex(records, s.Norm)
}
