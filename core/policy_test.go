package core

import "testing"

func TestColorForReset(t *testing.T) {
	states := []State{
		{},
		{BluetoothStatus: BluetoothStatus{SavedHosts: 0x0f, ConnectedHost: 1, Mode: BluetoothLegacy}},
		{USBReport: true},
	}
	for _, s := range states {
		c, ok := ColorFor(Reset, s)
		if !ok || c != (Color{0x44, 0x00, 0x00, LedModeOn}) {
			t.Errorf("Expected steady red for Reset under %+v, got %+v (%v)", s, c, ok)
		}
	}
}

func TestColorForConnectHost(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		status BluetoothStatus
		want   Color
		lit    bool
	}{
		{"connected and saved", BtConnectHost(2), BluetoothStatus{SavedHosts: 0x02, ConnectedHost: 2}, CyanFlash, true},
		{"connected not saved", BtConnectHost(2), BluetoothStatus{ConnectedHost: 2}, CyanFlash, true},
		{"saved not connected", BtConnectHost(1), BluetoothStatus{SavedHosts: 0x01, ConnectedHost: 2}, Green, true},
		{"neither", BtConnectHost(3), BluetoothStatus{SavedHosts: 0x01, ConnectedHost: 2}, Color{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ColorFor(tt.action, State{BluetoothStatus: tt.status})
			if ok != tt.lit || c != tt.want {
				t.Errorf("Expected %+v (%v), got %+v (%v)", tt.want, tt.lit, c, ok)
			}
		})
	}
}

func TestColorForSaveHost(t *testing.T) {
	c, ok := ColorFor(BtSaveHost(3), State{BluetoothStatus: BluetoothStatus{SavedHosts: 0x03}})
	if !ok || c != Yellow {
		t.Errorf("Expected yellow for unsaved slot 3, got %+v (%v)", c, ok)
	}

	c, ok = ColorFor(BtSaveHost(3), State{BluetoothStatus: BluetoothStatus{SavedHosts: 0x04}})
	if !ok || c != Cyan {
		t.Errorf("Expected cyan for saved slot 3, got %+v (%v)", c, ok)
	}
}

func TestColorForDeleteHost(t *testing.T) {
	c, ok := ColorFor(BtDeleteHost(1), State{BluetoothStatus: BluetoothStatus{SavedHosts: 0x01}})
	if !ok || c != Red {
		t.Errorf("Expected red for saved slot, got %+v (%v)", c, ok)
	}

	if _, ok := ColorFor(BtDeleteHost(2), State{BluetoothStatus: BluetoothStatus{SavedHosts: 0x01}}); ok {
		t.Error("Expected delete of an empty slot to stay unlit")
	}
}

func TestColorForLegacyToggle(t *testing.T) {
	want := map[BluetoothMode]Color{
		BluetoothUnknown: Red,
		BluetoothBle:     Green,
		BluetoothLegacy:  Yellow,
	}
	for mode, color := range want {
		c, ok := ColorFor(BtToggleLegacyMode, State{BluetoothStatus: BluetoothStatus{Mode: mode}})
		if !ok || c != color {
			t.Errorf("Expected %+v in mode %s, got %+v (%v)", color, mode, c, ok)
		}
	}
}

func TestColorForUsbToggle(t *testing.T) {
	if c, _ := ColorFor(UsbToggle, State{USBReport: true}); c != White {
		t.Errorf("Expected steady white while reporting, got %+v", c)
	}
	if c, _ := ColorFor(UsbToggle, State{}); c != WhiteFlash {
		t.Errorf("Expected flashing white while not reporting, got %+v", c)
	}
	if WhiteFlash != (Color{0xff, 0xff, 0xff, LedModeFlash}) {
		t.Errorf("Unexpected flashing white %+v", WhiteFlash)
	}
}

func TestColorForKeys(t *testing.T) {
	tests := []struct {
		action Action
		want   Color
		lit    bool
	}{
		{Key(LShift), Green, true},
		{Key(RAlt), Green, true},
		{Key(LMeta), Red, true}, // rule 3 wins over the modifier rule
		{Key(RMeta), Red, true},
		{Key(V), Red, true},
		{Key(N6), Blue, true},
		{Key(C), Blue, true},
		{Key(PScreen), White, true},
		{Key(Up), White, true},
		{Key(Home), White, true},
		{Key(Down), White, true},
		{Key(Numlock), Color{}, false}, // past arrow-up
		{Key(A), Color{}, false},
		{Key(N3), Color{}, false}, // no host connected
	}

	for _, tt := range tests {
		c, ok := ColorFor(tt.action, State{})
		if ok != tt.lit || c != tt.want {
			t.Errorf("Expected %+v (%v) for keycode %d, got %+v (%v)", tt.want, tt.lit, tt.action.KeyCode(), c, ok)
		}
	}
}

func TestColorForConnectedDigit(t *testing.T) {
	s := State{BluetoothStatus: BluetoothStatus{ConnectedHost: 3}}
	if c, ok := ColorFor(Key(N3), s); !ok || c != Cyan {
		t.Errorf("Expected cyan for the connected host digit, got %+v (%v)", c, ok)
	}
	if _, ok := ColorFor(Key(N2), s); ok {
		t.Error("Expected other digits to stay unlit")
	}
}

func TestColorForLayerAndLed(t *testing.T) {
	tests := []struct {
		action Action
		want   Color
	}{
		{LayerMomentary(LayerFn), White},
		{LayerToggle(LayerBt), Yellow},
		{LayerToggle(LayerFn2), Yellow},
		{LayerOff(LayerBt), GreenFlash},
		{LedNextTheme, GreenFlash},
		{LedOn, GreenFlash},
		{LedOff, Red},
		{LedNextBrightness, White},
		{LedNextAnimationSpeed, Green},
		{BtHostListQuery, White},
		{BtBroadcast, Green},
		{BtOn, Blue},
		{BtOff, Red},
	}

	for _, tt := range tests {
		c, ok := ColorFor(tt.action, State{})
		if !ok || c != tt.want {
			t.Errorf("Expected %+v for action %#04x, got %+v (%v)", tt.want, uint16(tt.action), c, ok)
		}
	}

	for _, a := range []Action{LayerMomentary(LayerBt), LayerOn(LayerBt), LedToggle, Nop, Transparent} {
		if _, ok := ColorFor(a, State{}); ok {
			t.Errorf("Expected action %#04x to stay unlit", uint16(a))
		}
	}
}

func TestColorRuleOrder(t *testing.T) {
	index := func(name string) int {
		for i, r := range colorRules {
			if r.name == name {
				return i
			}
		}
		t.Fatalf("rule %q not found", name)
		return -1
	}

	if index("modifier") != len(colorRules)-2 || index("navigation") != len(colorRules)-1 {
		t.Error("Expected modifier and navigation to be the last two rules")
	}

	// LMeta is both a modifier and a red key: the red rule must decide
	i, _, _ := matchRule(Key(LMeta), &State{})
	if i != index("red") {
		t.Errorf("Expected red rule to decide LMeta, got rule %d", i)
	}

	i, _, _ = matchRule(BtConnectHost(2), &State{BluetoothStatus: BluetoothStatus{SavedHosts: 0x02, ConnectedHost: 2}})
	if i != index("connect host") {
		t.Errorf("Expected connect host rule, got rule %d", i)
	}

	if i, _, ok := matchRule(Key(A), &State{}); ok || i != -1 {
		t.Errorf("Expected no rule for A, got %d", i)
	}
}
