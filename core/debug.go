package core

import "ap1key/protocol"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// LinkEvent captures one LED-link event for post-mortem analysis
type LinkEvent struct {
	EventType uint8  // Event type code
	Kind      uint8  // Message kind
	Operation uint8  // Message operation
	Length    uint8  // Payload length
	Seq       uint32 // Monotonic event counter
}

// Event type codes
const (
	EvtSend      = 1 // frame admitted by the transport
	EvtBusy      = 2 // send rejected, link busy
	EvtReceive   = 3 // message handled
	EvtUnhandled = 4 // message forwarded to the diagnostic sink
	EvtFault     = 5 // transport internal fault
)

const (
	LinkRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = true

	linkRing     [LinkRingSize]LinkEvent
	linkRingHead uint8
	linkSeq      uint32
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordLinkEvent captures an event in the ring buffer. It never blocks.
func RecordLinkEvent(eventType uint8, kind protocol.Kind, operation uint8, length int) {
	if length > 0xff {
		length = 0xff
	}
	linkSeq++
	idx := linkRingHead
	linkRing[idx] = LinkEvent{
		EventType: eventType,
		Kind:      uint8(kind),
		Operation: operation,
		Length:    uint8(length),
		Seq:       linkSeq,
	}
	linkRingHead = (idx + 1) % LinkRingSize
}

// RecordFault records a transport fault. It has the protocol.FaultHandler shape.
func RecordFault(err error) {
	RecordLinkEvent(EvtFault, 0, 0, 0)
	DebugPrintln("[LINK] fault: " + err.Error())
}

// LinkEvents returns the recorded events, oldest first
func LinkEvents() []LinkEvent {
	events := make([]LinkEvent, 0, LinkRingSize)
	start := linkRingHead
	for i := uint8(0); i < LinkRingSize; i++ {
		evt := linkRing[(start+i)%LinkRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpLinkRing outputs the event ring buffer (call on shutdown/error)
func DumpLinkRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[LINK] === Link Ring Dump ===")
	for _, evt := range LinkEvents() {
		var name string
		switch evt.EventType {
		case EvtSend:
			name = "SEND"
		case EvtBusy:
			name = "BUSY"
		case EvtReceive:
			name = "RECV"
		case EvtUnhandled:
			name = "UNHANDLED"
		case EvtFault:
			name = "FAULT!"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[LINK] " + name +
			" seq=" + itoa(int(evt.Seq)) +
			" kind=" + protocol.Kind(evt.Kind).String() +
			" op=" + itoa(int(evt.Operation)) +
			" len=" + itoa(int(evt.Length)))
	}
	debugPrintln("[LINK] === End Dump ===")
}

// ClearLinkRing clears the event buffer
func ClearLinkRing() {
	for i := range linkRing {
		linkRing[i] = LinkEvent{}
	}
	linkRingHead = 0
	linkSeq = 0
}
