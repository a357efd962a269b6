package floof

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/floofdev/floof/internal/mutex"
)

// sessionSet tracks the connected WebSocket sessions. The proxy server adds,
// the broadcaster drains, and sessions remove themselves on disconnect; the
// single mutex keeps a broadcast atomic relative to a disconnect.
type sessionSet struct {
	mu *mutex.Mutex
	m  map[string]*websocket.Conn
}

func newSessionSet() *sessionSet {
	return &sessionSet{
		mu: mutex.New("sessions"),
		m:  map[string]*websocket.Conn{},
	}
}

func (s *sessionSet) add(conn *websocket.Conn) string {
	defer s.mu.Lock("add").Unlock()
	id := uuid.NewString()
	s.m[id] = conn
	return id
}

func (s *sessionSet) del(id string) {
	defer s.mu.Lock("del").Unlock()
	delete(s.m, id)
}

// drain removes and returns every registered session.
func (s *sessionSet) drain() map[string]*websocket.Conn {
	defer s.mu.Lock("drain").Unlock()
	out := s.m
	s.m = map[string]*websocket.Conn{}
	return out
}

func (s *sessionSet) len() int {
	defer s.mu.Lock("len").Unlock()
	return len(s.m)
}
