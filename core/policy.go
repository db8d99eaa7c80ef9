package core

// LedMode is the brightness/behaviour tag sent with every key colour
type LedMode uint8

const (
	LedModeOff LedMode = iota
	LedModeOn
	LedModeFlash
)

// Color is one key's colour as understood by the LED MCU
type Color struct {
	R, G, B uint8
	Mode    LedMode
}

var (
	White  = Color{0x44, 0x44, 0x44, LedModeOn}
	Red    = Color{0x44, 0x00, 0x00, LedModeOn}
	Green  = Color{0x00, 0x44, 0x00, LedModeOn}
	Blue   = Color{0x00, 0x00, 0x44, LedModeOn}
	Cyan   = Color{0x00, 0x44, 0x44, LedModeOn}
	Yellow = Color{0x44, 0x44, 0x00, LedModeOn}

	WhiteFlash = Color{0xff, 0xff, 0xff, LedModeFlash}
	GreenFlash = Color{0x00, 0xff, 0x00, LedModeFlash}
	CyanFlash  = Color{0x00, 0xff, 0xff, LedModeFlash}
)

// State is the live device state the colour policy depends on
type State struct {
	BluetoothStatus
	// USBReport is set while HID reports are being sent over USB
	USBReport bool
}

type colorRule struct {
	name  string
	apply func(a Action, s *State) (Color, bool)
}

// colorRules is evaluated top to bottom, the first rule that matches decides.
// Reordering changes which keys light up.
var colorRules = []colorRule{
	{"usb report toggle", func(a Action, s *State) (Color, bool) {
		if a != UsbToggle {
			return Color{}, false
		}
		if s.USBReport {
			return White, true
		}
		return WhiteFlash, true
	}},
	{"white", oneOf(White, BtHostListQuery, LedNextBrightness, LayerMomentary(LayerFn))},
	{"red", oneOf(Red, Reset, LedOff, BtOff, Key(LMeta), Key(RMeta), Key(V))},
	{"green", oneOf(Green, BtBroadcast, LedNextAnimationSpeed)},
	{"blue", oneOf(Blue, BtOn, Key(N6), Key(N9), Key(C))},
	{"layer toggle", func(a Action, s *State) (Color, bool) {
		return Yellow, a.Kind() == ActLayerToggle
	}},
	{"flashing green", func(a Action, s *State) (Color, bool) {
		return GreenFlash, a.Kind() == ActLayerOff || a == LedNextTheme || a == LedOn
	}},
	{"connected host digit", func(a Action, s *State) (Color, bool) {
		d := a.KeyCode().Digit()
		return Cyan, d != 0 && d == s.ConnectedHost
	}},
	{"connect host", func(a Action, s *State) (Color, bool) {
		if a.Kind() != ActBtConnectHost {
			return Color{}, false
		}
		if a.Slot() == s.ConnectedHost {
			return CyanFlash, true
		}
		return Green, s.HasSavedHost(a.Slot())
	}},
	{"save host", func(a Action, s *State) (Color, bool) {
		if a.Kind() != ActBtSaveHost {
			return Color{}, false
		}
		if s.HasSavedHost(a.Slot()) {
			return Cyan, true
		}
		return Yellow, true
	}},
	{"delete host", func(a Action, s *State) (Color, bool) {
		return Red, a.Kind() == ActBtDeleteHost && s.HasSavedHost(a.Slot())
	}},
	{"legacy mode toggle", func(a Action, s *State) (Color, bool) {
		if a != BtToggleLegacyMode {
			return Color{}, false
		}
		switch s.Mode {
		case BluetoothBle:
			return Green, true
		case BluetoothLegacy:
			return Yellow, true
		}
		return Red, true
	}},
	{"modifier", func(a Action, s *State) (Color, bool) {
		return Green, a.Kind() == ActKey && a.KeyCode().IsModifier()
	}},
	{"navigation", func(a Action, s *State) (Color, bool) {
		return White, a.Kind() == ActKey && a.KeyCode().IsNavigation()
	}},
}

func oneOf(c Color, actions ...Action) func(Action, *State) (Color, bool) {
	return func(a Action, _ *State) (Color, bool) {
		for _, candidate := range actions {
			if a == candidate {
				return c, true
			}
		}
		return Color{}, false
	}
}

// ColorFor returns the colour of a key bound to action, or false if the key
// stays unlit
func ColorFor(action Action, s State) (Color, bool) {
	_, c, ok := matchRule(action, &s)
	return c, ok
}

// matchRule returns the index of the deciding rule, -1 if none matched
func matchRule(action Action, s *State) (int, Color, bool) {
	for i := range colorRules {
		if c, ok := colorRules[i].apply(action, s); ok {
			return i, c, true
		}
	}
	return -1, Color{}, false
}
