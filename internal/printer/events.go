package printer

import "sync"

// Fan-out of controller events to any number of subscribers. Publishing
// never blocks the controller: when a subscriber's buffer is full,
// non-critical events are quietly dropped, while critical events push the
// oldest buffered event out to make room.
type eventHub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
	closed bool
}

func newEventHub(buffer int) *eventHub {
	return &eventHub{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

func (h *eventHub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *eventHub) publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for _, ch := range h.subs {
		select {
		case ch <- e:
			continue
		default:
		}
		if !e.critical() {
			continue
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
