package mutex

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// New creates a named Mutex. The name only matters when debug logging is
// enabled.
func New(name string) *Mutex {
	return &Mutex{name: name}
}

// Mutex wraps sync.Mutex so that callers can `defer mu.Lock("...").Unlock()`
// in a single line. When debug is true, every lock transition is appended to
// mutex.log; lock requests and acquisitions carry the caller-supplied label,
// releases carry only the mutex name. That is enough to reconstruct a
// deadlock after the fact.
type Mutex struct {
	name string
	mu   sync.Mutex
}

var debug = false
var logfile *os.File

func init() {
	if !debug {
		return
	}
	f, err := os.Create("mutex.log")
	if err != nil {
		panic(err)
	}
	logfile = f
}

func (mu *Mutex) Lock(label string) *Mutex {
	mu.Printf("%s seeks lock", label)
	mu.mu.Lock()
	mu.Printf("%s receives lock", label)
	return mu
}

func (mu *Mutex) Unlock() {
	mu.Printf("releases lock")
	mu.mu.Unlock()
}

func (mu *Mutex) Printf(s string, args ...interface{}) {
	if debug {
		prefix := fmt.Sprintf("%s [%s] ", time.Now().Format(time.StampNano), mu.name)
		fmt.Fprintf(logfile, prefix+s+"\n", args...)
	}
}
