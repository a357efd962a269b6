package watcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

var OriginalWatch = Watch

type mockWatch struct {
	paths []string
	c     chan []EventInfo
}

var (
	mocks   []*mockWatch
	mocksmu sync.Mutex
)

// Mock replaces Watch with an in-memory implementation. Change events are
// driven by Dispatch; the debounce duration and ignore globs are not applied.
func Mock() {
	mocksmu.Lock()
	defer mocksmu.Unlock()

	mocks = nil
	Watch = func(paths []string, _ time.Duration, _ []glob.Glob) (<-chan []EventInfo, func(), error) {
		mocksmu.Lock()
		defer mocksmu.Unlock()

		m := &mockWatch{paths: paths, c: make(chan []EventInfo)}
		mocks = append(mocks, m)
		var once sync.Once
		stop := func() { once.Do(func() { close(m.c) }) }
		return m.c, stop, nil
	}
}

// Dispatch emits a change event on every mocked watch whose paths include
// path exactly; a watch on a parent directory does not receive it.
func Dispatch(path string) {
	mocksmu.Lock()
	targets := []*mockWatch{}
	for _, m := range mocks {
		for _, p := range m.paths {
			if p == path {
				targets = append(targets, m)
				break
			}
		}
	}
	mocksmu.Unlock()

	if len(targets) == 0 {
		panic(fmt.Errorf("can't dispatch on unwatched path '%s'", path))
	}
	for _, m := range targets {
		m.c <- []EventInfo{{Path: path, Event: "Write"}}
	}
}

func Unmock() {
	mocksmu.Lock()
	defer mocksmu.Unlock()

	mocks = nil
	Watch = OriginalWatch
}
