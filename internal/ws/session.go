package ws

import (
	"sync"

	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

// session is one websocket connection's outbound side. Rooms deliver pushes
// into it without blocking; once the outbox overflows the session is kicked
// and the connection closed.
type session struct {
	id     string
	out    chan any
	kicked chan struct{}
	once   sync.Once
}

func newSession(id string, size int) *session {
	return &session{
		id:     id,
		out:    make(chan any, size),
		kicked: make(chan struct{}),
	}
}

func (s *session) Deliver(p types.Push) bool { return s.send(p) }

func (s *session) send(msg any) bool {
	select {
	case <-s.kicked:
		return false
	default:
	}
	select {
	case s.out <- msg:
		return true
	default:
		s.kick()
		return false
	}
}

func (s *session) kick() { s.once.Do(func() { close(s.kicked) }) }
