// Package protocol implements the point-to-point link between the keyboard
// main controller and its LED/Bluetooth companion MCU.
package protocol

// Version represents the link firmware version
const Version = "0.1.0"

// Frame layout: [kind:1][length:1][operation:1][payload:length-1]
const (
	HeaderSize     = 2   // kind + length, always transferred on its own
	MaxFrameLength = 255 // largest value of the length byte
	MaxPayload     = MaxFrameLength - 1 - HeaderSize

	// BufferSize is the per-direction transfer buffer of the product firmware
	BufferSize = 0x80

	positionKind   = 0
	positionLength = 1
)

// Kind identifies the subsystem a message belongs to
type Kind uint8

const (
	KindReserved  Kind = 0
	KindError     Kind = 1
	KindSystem    Kind = 2
	KindAck       Kind = 3
	KindReboot    Kind = 4
	KindMacro     Kind = 5
	KindBluetooth Kind = 6
	KindKeyboard  Kind = 7
	KindKeyUp     Kind = 8
	KindLed       Kind = 9
	KindFwInfo    Kind = 10
	KindFwUpdate  Kind = 11
)

// Reserved wake-acknowledgement tuple. The peer sends it once it is awake
// and ready to receive the queued frame; it is never delivered to handlers.
const (
	WakeAckKind      = KindBluetooth
	WakeAckOperation = 170
)

func (k Kind) String() string {
	switch k {
	case KindReserved:
		return "reserved"
	case KindError:
		return "error"
	case KindSystem:
		return "system"
	case KindAck:
		return "ack"
	case KindReboot:
		return "reboot"
	case KindMacro:
		return "macro"
	case KindBluetooth:
		return "bluetooth"
	case KindKeyboard:
		return "keyboard"
	case KindKeyUp:
		return "keyup"
	case KindLed:
		return "led"
	case KindFwInfo:
		return "fwinfo"
	case KindFwUpdate:
		return "fwupdate"
	}
	return "unknown"
}

// Message is a decoded frame. Payload aliases the transport's receive buffer
// and is only valid for the duration of the handler call.
type Message struct {
	Kind      Kind
	Operation uint8
	Payload   []byte
}

// IsWakeAck reports whether the message is the reserved wake-acknowledgement
func (m *Message) IsWakeAck() bool {
	return m.Kind == WakeAckKind && m.Operation == WakeAckOperation
}
