package printer

import "fmt"

type EventKind int

const (
	EventLog EventKind = iota
	EventScanStarted
	EventConnected
	EventDisconnected
	EventBatteryLevel
	EventPrintProgress
	EventPrintComplete
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventLog:
		return "log"
	case EventScanStarted:
		return "scan-started"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventBatteryLevel:
		return "battery-level"
	case EventPrintProgress:
		return "print-progress"
	case EventPrintComplete:
		return "print-complete"
	case EventError:
		return "error"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Something the core observed. Log and Error carry Message, BatteryLevel
// carries Battery, PrintProgress carries Sent and Total.
type Event struct {
	Kind    EventKind
	Message string
	Battery int
	Sent    int
	Total   int
}

func logEvent(format string, args ...any) Event {
	return Event{Kind: EventLog, Message: fmt.Sprintf(format, args...)}
}

func errorEvent(format string, args ...any) Event {
	return Event{Kind: EventError, Message: fmt.Sprintf(format, args...)}
}

// Events a front-end must not miss. When a subscriber's buffer is full these
// push the oldest buffered event out instead of being dropped.
func (e Event) critical() bool {
	switch e.Kind {
	case EventError, EventDisconnected, EventPrintComplete:
		return true
	}
	return false
}
