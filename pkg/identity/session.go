// Package identity tracks who the current cart owner is. The empty id is the anonymous session.
package identity

import "sync"

const Anonymous = ""

type (
	Provider interface {
		Current() string
		// Subscribe registers fn to be called with the new id after every change.
		// The returned func removes the subscription.
		Subscribe(fn func(id string)) (cancel func())
	}

	Session struct {
		mu      sync.Mutex
		current string
		nextID  int
		subs    map[int]func(string)
	}
)

func NewSession(initial string) *Session {
	return &Session{
		current: initial,
		subs:    make(map[int]func(string)),
	}
}

func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set switches the identity and notifies subscribers synchronously, outside the lock.
// Setting the same id again is a no-op.
func (s *Session) Set(id string) {
	s.mu.Lock()
	if s.current == id {
		s.mu.Unlock()
		return
	}
	s.current = id
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
}

func (s *Session) SignOut() {
	s.Set(Anonymous)
}

func (s *Session) Subscribe(fn func(id string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
