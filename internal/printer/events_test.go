package printer

import "testing"

func TestEventHubFanout(t *testing.T) {
	h := newEventHub(4)
	a, cancelA := h.subscribe()
	b, cancelB := h.subscribe()
	defer cancelA()
	defer cancelB()

	h.publish(logEvent("one"))
	h.publish(Event{Kind: EventConnected})

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		if e.Kind != EventLog || e.Message != "one" {
			t.Errorf("Expected the log event first, got %v %q", e.Kind, e.Message)
		}
		e = <-ch
		if e.Kind != EventConnected {
			t.Errorf("Expected the connected event second, got %v", e.Kind)
		}
	}
}

func TestEventHubBackpressure(t *testing.T) {
	h := newEventHub(2)
	ch, cancel := h.subscribe()
	defer cancel()

	h.publish(logEvent("first"))
	h.publish(logEvent("second"))
	// buffer is full: this one just goes missing
	h.publish(logEvent("third"))
	// but a critical event pushes the oldest log out
	h.publish(Event{Kind: EventError, Message: "fatal"})

	e := <-ch
	if e.Kind != EventLog || e.Message != "second" {
		t.Errorf("Expected the second log to survive, got %v %q", e.Kind, e.Message)
	}
	e = <-ch
	if e.Kind != EventError {
		t.Errorf("Expected the error to survive a full buffer, got %v", e.Kind)
	}

	select {
	case e := <-ch:
		t.Errorf("Expected an empty buffer, got %v %q", e.Kind, e.Message)
	default:
	}
}

func TestEventHubCancel(t *testing.T) {
	h := newEventHub(2)
	ch, cancel := h.subscribe()

	cancel()
	h.publish(logEvent("after cancel"))

	if _, ok := <-ch; ok {
		t.Error("Expected the channel to be closed after cancel")
	}

	// cancelling twice is fine
	cancel()
}

func TestEventHubClose(t *testing.T) {
	h := newEventHub(2)
	ch, cancel := h.subscribe()
	defer cancel()

	h.publish(logEvent("last"))
	h.close()
	h.publish(logEvent("lost"))

	e := <-ch
	if e.Message != "last" {
		t.Errorf("Expected the buffered event before close, got %q", e.Message)
	}
	if _, ok := <-ch; ok {
		t.Error("Expected the channel to be closed")
	}

	late, lateCancel := h.subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Error("Expected a subscription after close to be closed immediately")
	}
}
