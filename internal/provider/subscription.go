package provider

import "sync"

// Subscription queues events for one listener. Delivery never blocks the
// emitter and never drops an event.
type Subscription struct {
	mu     sync.Mutex
	queue  []Event
	ready  chan struct{}
	closed bool
	cancel func(*Subscription)
}

// Ready receives a value whenever events are waiting to be drained.
func (s *Subscription) Ready() <-chan struct{} {
	return s.ready
}

// Drain returns queued events in emission order.
func (s *Subscription) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.queue
	s.queue = nil
	return events
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(s)
	}
}

func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Broadcaster fans events out to subscriptions.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{
		ready: make(chan struct{}, 1),
		cancel: func(s *Subscription) {
			b.mu.Lock()
			delete(b.subs, s)
			b.mu.Unlock()
		},
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		sub.push(ev)
	}
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
