package core

import (
	"bytes"
	"testing"

	"ap1key/protocol"
)

type sentFrame struct {
	kind      protocol.Kind
	operation uint8
	payload   []byte
}

type fakeLink struct {
	sent []sentFrame
	err  error
}

func (f *fakeLink) Send(kind protocol.Kind, operation uint8, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentFrame{kind, operation, append([]byte(nil), payload...)})
	return nil
}

func (f *fakeLink) last(t *testing.T) sentFrame {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeGPIO struct {
	configured map[GPIOPin]bool
	levels     map[GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{configured: map[GPIOPin]bool{}, levels: map[GPIOPin]bool{}}
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error {
	g.configured[pin] = true
	return nil
}

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	g.levels[pin] = value
	return nil
}

func TestLEDCommands(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)

	tests := []struct {
		name    string
		run     func() error
		op      LedOp
		payload []byte
	}{
		{"theme mode", led.ThemeMode, LedOpThemeMode, nil},
		{"next theme", led.NextTheme, LedOpConfigCmd, []byte{1, 0, 0}},
		{"next speed", led.NextAnimationSpeed, LedOpConfigCmd, []byte{0, 1, 0}},
		{"next brightness", led.NextBrightness, LedOpConfigCmd, []byte{0, 0, 1}},
		{"set theme", func() error { return led.SetTheme(4) }, LedOpThemeMode, []byte{4}},
		{"music", func() error { return led.SendMusic([]byte{9, 8, 7}) }, LedOpMusic, []byte{9, 8, 7}},
		{"get theme id", led.GetThemeID, LedOpGetThemeID, nil},
		{"set keys", func() error { return led.SetKeys([]byte{0xca, 1}) }, LedOpSetIndividualKeys, []byte{0xca, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err != nil {
				t.Fatalf("Command failed: %v", err)
			}
			f := link.last(t)
			if f.kind != protocol.KindLed {
				t.Errorf("Expected kind led, got %s", f.kind)
			}
			if f.operation != uint8(tt.op) {
				t.Errorf("Expected operation %d, got %d", tt.op, f.operation)
			}
			if !bytes.Equal(f.payload, tt.payload) {
				t.Errorf("Expected payload %v, got %v", tt.payload, f.payload)
			}
		})
	}
}

func TestLEDSendKeys(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)

	var state KeyState
	state[KeyIndexEnter] = 1
	if err := led.SendKeys(&state); err != nil {
		t.Fatalf("SendKeys failed: %v", err)
	}

	f := link.last(t)
	if f.operation != uint8(LedOpKey) || len(f.payload) != KeyCount {
		t.Errorf("Expected %d byte key frame, got op %d len %d", KeyCount, f.operation, len(f.payload))
	}
	if f.payload[KeyIndexEnter] != 1 {
		t.Error("Expected Enter to be reported pressed")
	}
}

func TestLEDBusyPropagates(t *testing.T) {
	ClearLinkRing()
	link := &fakeLink{err: protocol.ErrLinkBusy}
	led := NewLED(link)

	if err := led.NextTheme(); err != protocol.ErrLinkBusy {
		t.Errorf("Expected ErrLinkBusy, got %v", err)
	}
	if err := led.PushBluetoothTheme(StaticBluetooth{}, false); err != protocol.ErrLinkBusy {
		t.Errorf("Expected ErrLinkBusy from theme push, got %v", err)
	}

	events := LinkEvents()
	if len(events) != 2 || events[0].EventType != EvtBusy {
		t.Errorf("Expected two busy events, got %+v", events)
	}
}

func TestLEDToggle(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)

	// Off, so the first toggle enables theme mode
	led.Toggle()
	led.Toggle()
	led.Toggle()

	if len(link.sent) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(link.sent))
	}
	if f := link.sent[0]; f.operation != uint8(LedOpThemeMode) || len(f.payload) != 0 {
		t.Errorf("Expected theme mode first, got %+v", f)
	}
	if f := link.sent[1]; f.operation != uint8(LedOpThemeMode) || !bytes.Equal(f.payload, []byte{ThemeDark}) {
		t.Errorf("Expected dark theme second, got %+v", f)
	}
	if f := link.sent[2]; len(f.payload) != 0 {
		t.Errorf("Expected theme mode third, got %+v", f)
	}
}

func TestLEDPower(t *testing.T) {
	led := NewLED(&fakeLink{})
	if err := led.On(); err != ErrNoPowerPin {
		t.Errorf("Expected ErrNoPowerPin, got %v", err)
	}

	gpio := newFakeGPIO()
	if err := led.SetPowerPin(gpio, 15); err != nil {
		t.Fatalf("SetPowerPin failed: %v", err)
	}
	if !gpio.configured[15] {
		t.Error("Expected power pin to be configured as output")
	}

	led.On()
	if !gpio.levels[15] {
		t.Error("Expected power pin high after On")
	}
	led.Off()
	if gpio.levels[15] {
		t.Error("Expected power pin low after Off")
	}
}

func TestLEDPushBluetoothTheme(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)
	status := StaticBluetooth{SavedHosts: 0x03, ConnectedHost: 2, Mode: BluetoothBle}

	if err := led.PushBluetoothTheme(status, true); err != nil {
		t.Fatalf("PushBluetoothTheme failed: %v", err)
	}

	theme := RenderTheme(&BtLayout, State{BluetoothStatus: BluetoothStatus(status), USBReport: true})
	want := make([]byte, ThemePayloadMax)
	n, _ := theme.Serialize(want)

	f := link.last(t)
	if f.operation != uint8(LedOpSetIndividualKeys) {
		t.Errorf("Expected set individual keys, got %d", f.operation)
	}
	if !bytes.Equal(f.payload, want[:n]) {
		t.Errorf("Expected %v, got %v", want[:n], f.payload)
	}
}

func TestLEDBluetoothPinMode(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)

	if err := led.BluetoothPinMode(); err != nil {
		t.Fatalf("BluetoothPinMode failed: %v", err)
	}

	expected := []byte{0xca, 11}
	for i := KeyIndexN1; i <= KeyIndexN0; i++ {
		expected = append(expected, byte(i), 0x00, 0xff, 0x00, 1)
	}
	expected = append(expected, KeyIndexEnter, 0x00, 0x00, 0xff, 1)

	f := link.last(t)
	if !bytes.Equal(f.payload, expected) {
		t.Errorf("Expected %v, got %v", expected, f.payload)
	}
}

func TestLEDApply(t *testing.T) {
	link := &fakeLink{}
	led := NewLED(link)

	handled, err := led.Apply(LedTheme(7))
	if !handled || err != nil {
		t.Fatalf("Expected theme action handled, got %v %v", handled, err)
	}
	if f := link.last(t); !bytes.Equal(f.payload, []byte{7}) {
		t.Errorf("Expected theme 7, got %v", f.payload)
	}

	handled, _ = led.Apply(LedNextBrightness)
	if !handled || !bytes.Equal(link.last(t).payload, []byte{0, 0, 1}) {
		t.Error("Expected next brightness to be sent")
	}

	if handled, _ := led.Apply(Key(A)); handled {
		t.Error("Expected key action to be ignored")
	}
	if handled, err := led.Apply(LedOn); !handled || err != ErrNoPowerPin {
		t.Errorf("Expected LedOn without pin to fail, got %v %v", handled, err)
	}
}

func TestLEDHandleMessage(t *testing.T) {
	ClearLinkRing()
	led := NewLED(&fakeLink{})
	var lines []string
	led.SetDiagnosticSink(func(line string) { lines = append(lines, line) })

	acks := []LedOp{LedOpAckThemeMode, LedOpAckConfigCmd, LedOpAckSetIndividualKeys}
	for _, op := range acks {
		led.HandleMessage(&protocol.Message{Kind: protocol.KindLed, Operation: uint8(op), Payload: []byte{1}})
	}
	if len(lines) != 0 {
		t.Errorf("Expected acks to be accepted silently, got %v", lines)
	}

	led.HandleMessage(&protocol.Message{Kind: protocol.KindLed, Operation: 0x42, Payload: []byte{1, 2}})
	led.HandleMessage(&protocol.Message{Kind: protocol.KindKeyboard, Operation: uint8(LedOpAckThemeMode)})

	if len(lines) != 2 {
		t.Fatalf("Expected 2 diagnostic lines, got %d", len(lines))
	}
	if lines[0] != "lmsg: led 66 [1 2]" {
		t.Errorf("Expected 'lmsg: led 66 [1 2]', got '%s'", lines[0])
	}
	if lines[1] != "lmsg: keyboard 129 []" {
		t.Errorf("Expected 'lmsg: keyboard 129 []', got '%s'", lines[1])
	}

	events := LinkEvents()
	if len(events) != 5 || events[0].EventType != EvtReceive || events[4].EventType != EvtUnhandled {
		t.Errorf("Unexpected link events %+v", events)
	}
}

func TestPinWake(t *testing.T) {
	gpio := newFakeGPIO()
	gpio.levels[6] = true

	wake, err := NewPinWake(gpio, 6)
	if err != nil {
		t.Fatalf("NewPinWake failed: %v", err)
	}
	if !gpio.configured[6] {
		t.Error("Expected wake pin configured as output")
	}
	if gpio.levels[6] {
		t.Error("Expected wake pin to start low")
	}

	wake.Set(true)
	if !gpio.levels[6] {
		t.Error("Expected wake pin high")
	}
	wake.Set(false)
	if gpio.levels[6] {
		t.Error("Expected wake pin low")
	}
}
