// Package store держит снимки данных маркетплейсов в памяти и перечитывает изменившиеся файлы.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"commission-service/internal/commission/model"
	"commission-service/internal/commission/service"
	"commission-service/internal/fileio"
)

// Fingerprint: по нему решаем, менялся ли файл.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
}

func (f Fingerprint) Same(o Fingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d-%d", f.ModTime.UnixNano(), f.Size)
}

// Snapshot не меняется после публикации.
type Snapshot struct {
	Profile     model.Profile
	Path        string
	Exists      bool
	Available   bool // есть хотя бы одна удачная загрузка
	Records     []model.Record
	Index       *service.Index
	Columns     map[model.Field]string
	Report      service.Report
	Fingerprint Fingerprint
	LoadedAt    time.Time
	Err         error // последняя ошибка загрузки; данные при этом от предыдущей удачной
}

// ProductCount: строки или уникальные группы товаров, в зависимости от профиля.
func (s *Snapshot) ProductCount() int {
	if !s.Profile.CountDistinct {
		return len(s.Records)
	}
	seen := map[string]struct{}{}
	for _, r := range s.Records {
		if r.ProductGroup != "" {
			seen[r.ProductGroup] = struct{}{}
		}
	}
	return len(seen)
}

// Summary отдаётся в /api/marketplaces.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"csv"`
	Exists       bool      `json:"exists"`
	Available    bool      `json:"available"`
	RowCount     int       `json:"rowCount"`
	ProductCount int       `json:"productCount"`
	LoadedAt     time.Time `json:"loadedAt,omitzero"`
	Error        string    `json:"error,omitempty"`
}

type Options struct {
	Dir      string
	Profiles []model.Profile
}

type entry struct {
	profile model.Profile
	path    string
	snap    atomic.Pointer[Snapshot]
}

type Store struct {
	svc     *service.Service
	log     zerolog.Logger
	entries []*entry
	byID    map[string]*entry

	mu       sync.Mutex // один Refresh за раз
	onReload []func(id string)
}

func New(svc *service.Service, opt Options, logger zerolog.Logger) *Store {
	s := &Store{
		svc:  svc,
		log:  logger.With().Str("component", "store").Logger(),
		byID: make(map[string]*entry, len(opt.Profiles)),
	}
	for _, p := range opt.Profiles {
		path := p.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(opt.Dir, path)
		}
		e := &entry{profile: p, path: path}
		e.snap.Store(&Snapshot{Profile: p, Path: path, Index: svc.BuildIndex(nil)})
		s.entries = append(s.entries, e)
		s.byID[p.ID] = e
	}
	return s
}

// OnReload регистрирует колбэк после успешной перезагрузки маркетплейса.
func (s *Store) OnReload(fn func(id string)) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// Profiles возвращает профили в порядке конфигурации.
func (s *Store) Profiles() []model.Profile {
	out := make([]model.Profile, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.profile
	}
	return out
}

// Snapshot отдаёт текущий снимок; для отсутствующего файла пустой, но не nil.
func (s *Store) Snapshot(id string) (*Snapshot, error) {
	e, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMarketplace, id)
	}
	return e.snap.Load(), nil
}

// Ready возвращает снимок с данными или ErrMarketplaceUnavailable.
func (s *Store) Ready(id string) (*Snapshot, error) {
	snap, err := s.Snapshot(id)
	if err != nil {
		return nil, err
	}
	if !snap.Available {
		if snap.Err != nil {
			return snap, fmt.Errorf("%w: %s: %w", model.ErrMarketplaceUnavailable, id, snap.Err)
		}
		return snap, fmt.Errorf("%w: %s (%s)", model.ErrMarketplaceUnavailable, id, snap.Path)
	}
	return snap, nil
}

func (s *Store) Marketplaces() []Summary {
	out := make([]Summary, 0, len(s.entries))
	for _, e := range s.entries {
		snap := e.snap.Load()
		sum := Summary{
			ID:           e.profile.ID,
			Name:         e.profile.Name,
			Path:         e.path,
			Exists:       snap.Exists,
			Available:    snap.Available,
			RowCount:     len(snap.Records),
			ProductCount: snap.ProductCount(),
			LoadedAt:     snap.LoadedAt,
		}
		if snap.Err != nil {
			sum.Error = snap.Err.Error()
		}
		out = append(out, sum)
	}
	return out
}

// Refresh перечитывает изменившиеся файлы (force: все). Возвращает id перезагруженных.
func (s *Store) Refresh(ctx context.Context, force bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []string
	for _, e := range s.entries {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if s.refreshOne(e, force) {
			changed = append(changed, e.profile.ID)
		}
	}
	for _, id := range changed {
		for _, fn := range s.onReload {
			fn(id)
		}
	}
	return changed, nil
}

func (s *Store) refreshOne(e *entry, force bool) bool {
	prev := e.snap.Load()
	st, err := os.Stat(e.path)
	if errors.Is(err, os.ErrNotExist) {
		if !prev.Exists && prev.Err == nil {
			return false
		}
		s.log.Warn().Str("marketplace", e.profile.ID).Str("path", e.path).Msg("file not found")
		e.snap.Store(&Snapshot{Profile: e.profile, Path: e.path, Index: s.svc.BuildIndex(nil), LoadedAt: time.Now()})
		return true
	}
	if err != nil {
		s.keepPrevious(e, prev, Fingerprint{}, err)
		return false
	}

	fp := Fingerprint{ModTime: st.ModTime(), Size: st.Size()}
	if !force && prev.Exists && prev.Fingerprint.Same(fp) {
		return false
	}

	start := time.Now()
	snap, err := s.load(e, fp)
	if err != nil {
		s.keepPrevious(e, prev, fp, err)
		return false
	}
	e.snap.Store(snap)
	s.log.Info().
		Str("marketplace", e.profile.ID).
		Int("records", len(snap.Records)).
		Int("products", snap.ProductCount()).
		Dur("elapsed", time.Since(start)).
		Msg("reloaded")
	return true
}

func (s *Store) load(e *entry, fp Fingerprint) (*Snapshot, error) {
	tbl, err := fileio.ReadFile(e.path, fileio.Options{Sheet: e.profile.Sheet, HeaderRow: e.profile.HeaderRow})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.path, err)
	}
	res, err := s.svc.Reconciler.Reconcile(tbl, e.profile)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Profile:     e.profile,
		Path:        e.path,
		Exists:      true,
		Available:   true,
		Records:     res.Records,
		Index:       s.svc.BuildIndex(res.Records),
		Columns:     res.Columns,
		Report:      res.Report,
		Fingerprint: fp,
		LoadedAt:    time.Now(),
	}, nil
}

// в keepPrevious ошибка загрузки не затирает удачный снимок, только помечается в нём.
// Отпечаток сбойного файла запоминается, чтобы не перечитывать его на каждом тике.
func (s *Store) keepPrevious(e *entry, prev *Snapshot, fp Fingerprint, err error) {
	s.log.Error().Err(err).Str("marketplace", e.profile.ID).Str("path", e.path).Msg("load failed")
	next := *prev
	next.Exists = true
	next.Err = err
	if !fp.ModTime.IsZero() {
		next.Fingerprint = fp
	}
	e.snap.Store(&next)
}
