package events

import (
	"sync"

	"github.com/golang/glog"
)

// Hub fans events out to subscribers. Slow subscribers miss events
// rather than blocking the publisher.
type Hub struct {
	lock   sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription receives events from a Hub.
type Subscription struct {
	hub *Hub
	ch  chan *BoardEvent
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe creates a subscription buffering up to size events.
func (h *Hub) Subscribe(size int) *Subscription {
	sub := &Subscription{hub: h, ch: make(chan *BoardEvent, size)}
	h.lock.Lock()
	if h.closed {
		close(sub.ch)
	} else {
		h.subs[sub] = struct{}{}
	}
	h.lock.Unlock()
	return sub
}

// Close closes all subscriptions, and those created afterwards.
func (h *Hub) Close() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.ch)
	}
	return nil
}

// Publish delivers the event to all subscribers.
func (h *Hub) Publish(ev *BoardEvent) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			glog.V(2).Infof("subscriber full, %s event dropped", ev.Kind)
		}
	}
}

// C returns the event chan, closed when the subscription is closed.
func (s *Subscription) C() <-chan *BoardEvent {
	return s.ch
}

// Close implements io.Closer.
func (s *Subscription) Close() error {
	s.hub.lock.Lock()
	defer s.hub.lock.Unlock()
	if _, ok := s.hub.subs[s]; ok {
		delete(s.hub.subs, s)
		close(s.ch)
	}
	return nil
}
