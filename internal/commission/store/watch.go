package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 300 * time.Millisecond

// Watch перечитывает данные по таймеру и (useFS) по событиям файловой системы.
// Блокируется до отмены ctx.
func (s *Store) Watch(ctx context.Context, interval time.Duration, useFS bool) error {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if useFS {
		w, err := s.newWatcher()
		if err != nil {
			s.log.Warn().Err(err).Msg("fsnotify disabled, polling only")
		} else {
			defer w.Close()
			events, errs = w.Events, w.Errors
		}
	}
	watched := make(map[string]bool, len(s.entries))
	for _, e := range s.entries {
		watched[filepath.Clean(e.path)] = true
	}

	// события приходят пачками (write+chmod+rename), ждём тишины
	var pending <-chan time.Time
	reload := func(reason string) {
		changed, err := s.Refresh(ctx, false)
		if err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Str("reason", reason).Msg("refresh")
		}
		if len(changed) > 0 {
			s.log.Debug().Strs("marketplaces", changed).Str("reason", reason).Msg("refresh done")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			reload("interval")
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if watched[filepath.Clean(ev.Name)] {
				pending = time.After(debounce)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn().Err(err).Msg("fsnotify")
		case <-pending:
			pending = nil
			reload("fsnotify")
		}
	}
}

// newWatcher следит за каталогами, а не файлами: редакторы и import пишут через rename.
func (s *Store) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dirs := map[string]bool{}
	for _, e := range s.entries {
		dir := filepath.Dir(e.path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.Add(dir); err != nil {
			s.log.Warn().Err(err).Str("dir", dir).Msg("watch dir")
		}
	}
	return w, nil
}
