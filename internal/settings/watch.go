package settings

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to the settings file made outside the process.
// The parent directory is watched since editors and our own writes replace
// the file rather than modify it in place.
type Watcher struct {
	watcher *fsnotify.Watcher
	name    string
	log     *zap.Logger
	changes chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

func Watch(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		name:    filepath.Base(path),
		log:     log.Named("settings-watch"),
		changes: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes yields one value per burst of writes; pending notifications are
// coalesced. It is closed by Close.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.changes)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		<-w.doneCh
	})
	return err
}
