package generate

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the watcher waits for a burst of file events
// to settle before reloading once.
const reloadDebounce = 100 * time.Millisecond

// CatalogWatcher reloads a catalog file into a generator when it changes.
// An invalid edit is logged and the previous catalog stays active.
type CatalogWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	generator *Generator
	onReload  func(*Catalog)
	done      chan bool
	debug     bool
	debounce  time.Duration
}

// NewCatalogWatcher watches path for g. The file's directory is watched so
// editors that replace the file on save are handled.
func NewCatalogWatcher(path string, g *Generator, debug bool) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if debug {
		log.Printf("[Watch] Watching catalog: %s", abs)
	}

	return &CatalogWatcher{
		watcher:   fsWatcher,
		path:      abs,
		generator: g,
		done:      make(chan bool),
		debug:     debug,
		debounce:  reloadDebounce,
	}, nil
}

// OnReload registers a callback run after each successful reload.
func (w *CatalogWatcher) OnReload(fn func(*Catalog)) {
	w.onReload = fn
}

// Reload loads the file and swaps it in.
func (w *CatalogWatcher) Reload() error {
	c, err := LoadCatalog(w.path)
	if err != nil {
		return err
	}
	w.generator.SetCatalog(c)
	log.Printf("[Watch] Catalog reloaded: %d categories", len(c.Categories))
	if w.onReload != nil {
		w.onReload(c)
	}
	return nil
}

// Start begins watching for file changes. Events arriving within the
// debounce window of each other cause a single reload.
func (w *CatalogWatcher) Start() {
	go func() {
		timer := time.NewTimer(w.debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if w.debug {
					log.Printf("[Watch] File changed: %s", event.Name)
				}
				timer.Reset(w.debounce)

			case <-timer.C:
				if err := w.Reload(); err != nil {
					log.Printf("[Watch] Reload failed for %s: %v", w.path, err)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Watch] Error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (w *CatalogWatcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
