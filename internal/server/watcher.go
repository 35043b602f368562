package server

import (
	"sort"
	"time"

	"github.com/ggfazio/zim-desktop-wiki/internal/logging"
	"github.com/ggfazio/zim-desktop-wiki/internal/notebook"
)

// watcher polls the notebook and reports changed pages by name.
// Deleted pages report too, so a tab showing one reloads into a 404
// rather than going stale.
type watcher struct {
	nb       *notebook.Notebook
	interval time.Duration
	notify   func(page string)
	mtimes   map[string]time.Time
}

func newWatcher(nb *notebook.Notebook, interval time.Duration, notify func(string)) *watcher {
	return &watcher{nb: nb, interval: interval, notify: notify}
}

// run polls until stop closes. The first scan primes the state without
// notifying, so a server start does not reload every open tab.
func (w *watcher) run(stop <-chan struct{}) {
	w.scan()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, page := range w.scan() {
				logging.Debug("page changed", "page", page)
				w.notify(page)
			}
		}
	}
}

// scan diffs the notebook against the previous poll and returns the
// changed page names, sorted. A failed scan keeps the previous state
// so a transient error does not turn into a reload storm.
func (w *watcher) scan() []string {
	mtimes, err := w.nb.MTimes()
	if err != nil {
		logging.Warn("notebook scan failed", "error", err)
		return nil
	}

	var changed []string
	for name, mt := range mtimes {
		if old, ok := w.mtimes[name]; !ok || !mt.Equal(old) {
			changed = append(changed, name)
		}
	}
	for name := range w.mtimes {
		if _, ok := mtimes[name]; !ok {
			changed = append(changed, name)
		}
	}

	w.mtimes = mtimes
	sort.Strings(changed)
	return changed
}
