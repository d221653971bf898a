package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a settings file whenever it changes on disk and notifies
// registered listeners with the new value.
type Watcher struct {
	path string

	mu        sync.Mutex
	settings  Settings
	listeners []func(Settings)
}

// NewWatcher loads path and starts watching it until ctx is cancelled.
func NewWatcher(ctx context.Context, path string) (*Watcher, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrWatcherStart, err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("%s: %w", ErrWatcherStart, err)
	}

	w := &Watcher{path: path, settings: s}

	slog.Info(MsgSettingsWatch,
		LogKeyComponent, CompSettings,
		LogKeyPath, path,
	)

	go w.watch(ctx, fw)
	return w, nil
}

// Get returns the last successfully loaded settings.
func (w *Watcher) Get() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// OnUpdate registers functions called after each successful reload.
func (w *Watcher) OnUpdate(fns ...func(Settings)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fns...)
	w.mu.Unlock()
}

func (w *Watcher) reload() error {
	s, err := LoadSettings(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.settings = s
	listeners := make([]func(Settings), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	for _, f := range listeners {
		f(s)
	}
	return nil
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher) {
	defer func() { _ = fw.Close() }()
	log := slog.With(LogKeyComponent, CompSettings, LogKeyPath, w.path)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Rename) {
				// Editors replacing the file emit rename before the new file exists.
				time.Sleep(WatcherRenameDelay)
				_ = fw.Add(w.path)
			}
			log.Info(MsgSettingsChg, LogKeyEvent, event.Op.String())
			if err := w.reload(); err != nil {
				log.Error(ErrSettingsRead, LogKeyError, err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Error(MsgSettingsErr, LogKeyError, err)

		case <-ctx.Done():
			log.Info(MsgSettingsStop)
			return
		}
	}
}
