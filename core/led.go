package core

import (
	"errors"

	"ap1key/protocol"
)

// LedOp is an operation of the LED subsystem (kind protocol.KindLed)
type LedOp uint8

const (
	LedOpThemeMode          LedOp = 1
	LedOpGetThemeID         LedOp = 2
	LedOpConfigCmd          LedOp = 3
	LedOpUserStaticTheme    LedOp = 4
	LedOpUserAnimationTheme LedOp = 5
	LedOpMusicFollow        LedOp = 6
	LedOpKey                LedOp = 7
	LedOpMusic              LedOp = 8
	LedOpSetIndividualKeys  LedOp = 10

	ackFlag LedOp = 0x80

	LedOpAckThemeMode         = LedOpThemeMode | ackFlag
	LedOpAckConfigCmd         = LedOpConfigCmd | ackFlag
	LedOpAckSetIndividualKeys = LedOpSetIndividualKeys | ackFlag
)

// ThemeDark is the built-in theme with every key off
const ThemeDark = 15

// ErrNoPowerPin is returned by On and Off when no power pin was set
var ErrNoPowerPin = errors.New("led: power pin not configured")

// Link is the send side of the transport
type Link interface {
	Send(kind protocol.Kind, operation uint8, payload []byte) error
}

// DiagnosticSink receives a line for every unsolicited message
type DiagnosticSink func(line string)

// KeyState holds one byte per key position, nonzero while pressed
type KeyState [KeyCount]byte

// LED is the command layer for the LED companion MCU
type LED struct {
	link Link
	sink DiagnosticSink

	power    GPIODriver
	powerPin GPIOPin

	// themeOn is true while the companion runs its own theme
	themeOn bool

	payload [ThemePayloadMax]byte
}

// NewLED creates a controller sending over link. Unsolicited messages go to
// DebugPrintln until SetDiagnosticSink is called.
func NewLED(link Link) *LED {
	return &LED{link: link, sink: DebugPrintln}
}

// SetDiagnosticSink replaces the sink for unsolicited messages
func (l *LED) SetDiagnosticSink(sink DiagnosticSink) {
	l.sink = sink
}

// SetPowerPin configures the companion's power-enable output
func (l *LED) SetPowerPin(driver GPIODriver, pin GPIOPin) error {
	if err := driver.ConfigureOutput(pin); err != nil {
		return err
	}
	l.power = driver
	l.powerPin = pin
	return nil
}

// On powers the companion MCU
func (l *LED) On() error {
	if l.power == nil {
		return ErrNoPowerPin
	}
	return l.power.SetPin(l.powerPin, true)
}

// Off cuts power to the companion MCU
func (l *LED) Off() error {
	if l.power == nil {
		return ErrNoPowerPin
	}
	l.themeOn = false
	return l.power.SetPin(l.powerPin, false)
}

// ThemeMode hands the keys back to the companion's current theme
func (l *LED) ThemeMode() error {
	l.themeOn = true
	return l.send(LedOpThemeMode, nil)
}

// Toggle alternates between theme mode and the dark theme
func (l *LED) Toggle() error {
	if !l.themeOn {
		return l.ThemeMode()
	}
	l.themeOn = false
	return l.SetTheme(ThemeDark)
}

// NextTheme cycles the companion's theme
func (l *LED) NextTheme() error {
	return l.send(LedOpConfigCmd, []byte{1, 0, 0})
}

// NextAnimationSpeed cycles the animation speed
func (l *LED) NextAnimationSpeed() error {
	return l.send(LedOpConfigCmd, []byte{0, 1, 0})
}

// NextBrightness cycles the brightness
func (l *LED) NextBrightness() error {
	return l.send(LedOpConfigCmd, []byte{0, 0, 1})
}

// SetTheme selects a built-in theme by index
func (l *LED) SetTheme(index uint8) error {
	return l.send(LedOpThemeMode, []byte{index})
}

// SendKeys pushes the pressed-key snapshot for reactive themes
func (l *LED) SendKeys(state *KeyState) error {
	return l.send(LedOpKey, state[:])
}

// SendMusic pushes music-visualizer levels
func (l *LED) SendMusic(levels []byte) error {
	return l.send(LedOpMusic, levels)
}

// GetThemeID asks for the current theme id; the answer is an ack on
// theme-mode carrying [theme id].
func (l *LED) GetThemeID() error {
	return l.send(LedOpGetThemeID, nil)
}

// SetKeys sends a serialized colour table
func (l *LED) SetKeys(payload []byte) error {
	return l.send(LedOpSetIndividualKeys, payload)
}

// PushBluetoothTheme renders the Bluetooth layer against the provider's
// current state and sends it.
func (l *LED) PushBluetoothTheme(provider BluetoothProvider, usbReport bool) error {
	theme := RenderTheme(Layers[LayerBt], State{
		BluetoothStatus: provider.Status(),
		USBReport:       usbReport,
	})
	n, err := theme.Serialize(l.payload[:])
	if err != nil {
		return err
	}
	return l.SetKeys(l.payload[:n])
}

// BluetoothPinMode lights the digits green and Enter blue for PIN entry
func (l *LED) BluetoothPinMode() error {
	var theme Theme
	digit := Color{0x00, 0xff, 0x00, LedModeOn}
	for i := KeyIndexN1; i <= KeyIndexN0; i++ {
		theme.colors[i] = digit
		theme.lit[i] = true
	}
	theme.colors[KeyIndexEnter] = Color{0x00, 0x00, 0xff, LedModeOn}
	theme.lit[KeyIndexEnter] = true

	n, err := theme.Serialize(l.payload[:])
	if err != nil {
		return err
	}
	// The companion expects the entry count here, not count+1
	l.payload[1] = byte(theme.Count())
	return l.SetKeys(l.payload[:n])
}

// Apply runs the LED command bound to an LED action. It reports false for
// actions outside the LED family.
func (l *LED) Apply(action Action) (bool, error) {
	var err error
	switch action.Kind() {
	case ActLedOn:
		err = l.On()
	case ActLedOff:
		err = l.Off()
	case ActLedToggle:
		err = l.Toggle()
	case ActLedNextTheme:
		err = l.NextTheme()
	case ActLedNextBrightness:
		err = l.NextBrightness()
	case ActLedNextAnimationSpeed:
		err = l.NextAnimationSpeed()
	case ActLedTheme:
		err = l.SetTheme(action.Arg())
	default:
		return false, nil
	}
	return true, err
}

// HandleMessage dispatches a message received from the companion. It has the
// protocol.MessageHandler shape.
func (l *LED) HandleMessage(msg *protocol.Message) {
	if msg.Kind == protocol.KindLed {
		switch LedOp(msg.Operation) {
		case LedOpAckThemeMode, LedOpAckConfigCmd, LedOpAckSetIndividualKeys:
			RecordLinkEvent(EvtReceive, msg.Kind, msg.Operation, len(msg.Payload))
			return
		}
	}

	RecordLinkEvent(EvtUnhandled, msg.Kind, msg.Operation, len(msg.Payload))
	if l.sink != nil {
		l.sink("lmsg: " + msg.Kind.String() + " " + itoa(int(msg.Operation)) + " " + formatBytes(msg.Payload))
	}
}

func (l *LED) send(op LedOp, payload []byte) error {
	err := l.link.Send(protocol.KindLed, uint8(op), payload)
	switch err {
	case nil:
		RecordLinkEvent(EvtSend, protocol.KindLed, uint8(op), len(payload))
	case protocol.ErrLinkBusy:
		RecordLinkEvent(EvtBusy, protocol.KindLed, uint8(op), len(payload))
	}
	return err
}
