// Package watcher turns raw filesystem notifications into debounced change
// events. Watch is a package variable so tests can swap in a mock and drive
// change events by hand.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/rjeczalik/notify"
)

type EventInfo struct {
	Path  string
	Event string
}

// Watch observes the given paths. Directories are watched recursively. The
// returned channel emits a batch of events only after dur of notification
// silence: every notification arriving before the debounce timer expires
// resets it, so a continuous storm of notifications stalls emission
// indefinitely. Events whose path matches any ignore glob are discarded
// before they reach the debouncer.
//
// The channel is infinite until the returned stop function is called.
var Watch = func(paths []string, dur time.Duration, ignore []glob.Glob) (<-chan []EventInfo, func(), error) {
	var stopped bool

	// notify recommends a buffered channel; a full channel drops events,
	// which is acceptable here because the debouncer only cares that at
	// least one change happened.
	c := make(chan notify.EventInfo, 16)

	stop := func() {
		if stopped {
			return
		}
		stopped = true
		notify.Stop(c)
		close(c)
	}

	for _, p := range paths {
		watchPath := p
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			watchPath = filepath.Join(p, "...")
		}
		if err := notify.Watch(watchPath, c, notify.All); err != nil {
			stop()
			return nil, nil, err
		}
	}

	filtered := make(chan EventInfo)
	go func() {
		defer close(filtered)
		for ev := range c {
			if ignored(ev.Path(), ignore) {
				continue
			}
			filtered <- EventInfo{
				Path:  ev.Path(),
				Event: strings.TrimPrefix(ev.Event().String(), "notify."),
			}
		}
	}()

	return debounce(dur, filtered), stop, nil
}

func ignored(path string, ignore []glob.Glob) bool {
	for _, g := range ignore {
		if g.Match(path) || g.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}

// debounce batches events from c, emitting only after dur of silence. Each
// incoming event resets the timer.
func debounce(dur time.Duration, c <-chan EventInfo) <-chan []EventInfo {
	out := make(chan []EventInfo)

	go func() {
		defer close(out)

		var coll []EventInfo
		var timer *time.Timer
		var expired <-chan time.Time

		for {
			select {
			case ev, ok := <-c:
				if !ok {
					return
				}
				coll = append(coll, ev)
				if timer == nil {
					timer = time.NewTimer(dur)
					expired = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-expired:
						default:
						}
					}
					timer.Reset(dur)
				}

			case <-expired:
				out <- coll
				coll = nil
				timer = nil
				expired = nil
			}
		}
	}()

	return out
}
