// Package watch reloads settings when the settings file changes and
// publishes each successfully loaded snapshot.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"

	"github.com/phyten/tagfilter/internal/config"
)

const DefaultDebounce = 50 * time.Millisecond

// Holder publishes immutable settings snapshots to concurrent readers.
type Holder struct {
	mu   sync.RWMutex
	snap config.Snapshot
}

func NewHolder(initial config.Snapshot) *Holder {
	return &Holder{snap: initial}
}

func (h *Holder) Get() config.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

func (h *Holder) Set(s config.Snapshot) {
	h.mu.Lock()
	h.snap = s
	h.mu.Unlock()
}

// Loader produces a fresh snapshot, typically config.Resolve bound to the
// watched path.
type Loader func() (config.Snapshot, error)

type Options struct {
	Debounce time.Duration
	OnChange func(config.Snapshot)
	Log      pslog.Logger
}

type Watcher struct {
	path     string
	load     Loader
	holder   *Holder
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(config.Snapshot)
	log      pslog.Logger
}

// New watches the directory holding path; editors and Save replace the file
// by rename, which a watch on the file itself would lose.
func New(path string, load Loader, holder *Holder, opts Options) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: no settings file to watch")
	}
	if load == nil || holder == nil {
		return nil, errors.New("watch: loader and holder required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		load:     load,
		holder:   holder,
		watcher:  fw,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		log:      opts.Log,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w, nil
}

// Run blocks until ctx is done or the underlying watcher fails, and closes
// the watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(0)
	<-timer.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			timer.Reset(w.debounce)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.log != nil {
				w.log.Warn("settings watch error", "path", w.path, "err", err)
			}
		}
	}
}

func (w *Watcher) reload() {
	snap, err := w.load()
	if err != nil {
		if w.log != nil {
			w.log.Warn("settings reload failed; keeping previous settings", "path", w.path, "err", err)
		}
		return
	}
	w.holder.Set(snap)
	if w.log != nil {
		w.log.Info("settings reloaded", "path", w.path, "tags", len(snap.Settings.Tags), "enabled", snap.Settings.Enabled)
	}
	if w.onChange != nil {
		w.onChange(snap)
	}
}
