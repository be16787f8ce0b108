// Package sublist fans report payloads out to a set of subscribers,
// grouped by report class.
package sublist

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber receives payloads. Push reports true when the subscriber
// is gone; it is then dropped from the list.
type Subscriber interface {
	Push(class string, data []byte) (closed bool)
}

type Sublist struct {
	mu   sync.Mutex
	list map[uuid.UUID]Subscriber
	last map[string][]byte
}

func New() *Sublist {
	return &Sublist{
		list: make(map[uuid.UUID]Subscriber),
		last: make(map[string][]byte),
	}
}

// Subscribe registers sub and replays the last payload of each class so
// a late joiner starts with the current picture. A subscriber that
// reports closed during replay is not registered. Returns a token for
// Unsubscribe.
func (s *Sublist) Subscribe(sub Subscriber) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	for class, data := range s.last {
		closed := sub.Push(class, data)
		if closed {
			return id
		}
	}
	s.list[id] = sub
	return id
}

func (s *Sublist) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	delete(s.list, id)
	s.mu.Unlock()
}

// Send delivers data to every live subscriber and prunes the dead ones.
func (s *Sublist) Send(class string, data []byte) {
	s.mu.Lock()
	s.last[class] = data
	for id, sub := range s.list {
		closed := sub.Push(class, data)
		if closed {
			delete(s.list, id)
		}
	}
	s.mu.Unlock()
}

// Len reports the current subscriber count.
func (s *Sublist) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}
