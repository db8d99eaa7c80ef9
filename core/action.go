package core

// ActionKind is the variant tag of an Action
type ActionKind uint8

const (
	ActNop         ActionKind = 0x00
	ActReset       ActionKind = 0x01
	ActTransparent ActionKind = 0x02
	ActUsbToggle   ActionKind = 0x03

	ActKey ActionKind = 0x10

	ActLayerMomentary ActionKind = 0x20
	ActLayerToggle    ActionKind = 0x21
	ActLayerOn        ActionKind = 0x22
	ActLayerOff       ActionKind = 0x23

	ActLedOn                 ActionKind = 0x30
	ActLedOff                ActionKind = 0x31
	ActLedToggle             ActionKind = 0x32
	ActLedNextTheme          ActionKind = 0x33
	ActLedNextBrightness     ActionKind = 0x34
	ActLedNextAnimationSpeed ActionKind = 0x35
	ActLedTheme              ActionKind = 0x36

	ActBtOn               ActionKind = 0x40
	ActBtOff              ActionKind = 0x41
	ActBtSaveHost         ActionKind = 0x42
	ActBtConnectHost      ActionKind = 0x43
	ActBtDeleteHost       ActionKind = 0x44
	ActBtBroadcast        ActionKind = 0x45
	ActBtLegacyMode       ActionKind = 0x46
	ActBtToggleLegacyMode ActionKind = 0x47
	ActBtHostListQuery    ActionKind = 0x48
)

// Action is what a physical key is bound to: the variant tag in the high
// byte and its argument (keycode, layer, theme, host slot) in the low byte.
type Action uint16

func newAction(kind ActionKind, arg uint8) Action {
	return Action(kind)<<8 | Action(arg)
}

// Argument-less actions
const (
	Nop         = Action(ActNop) << 8
	Reset       = Action(ActReset) << 8
	Transparent = Action(ActTransparent) << 8
	UsbToggle   = Action(ActUsbToggle) << 8

	LedOn                 = Action(ActLedOn) << 8
	LedOff                = Action(ActLedOff) << 8
	LedToggle             = Action(ActLedToggle) << 8
	LedNextTheme          = Action(ActLedNextTheme) << 8
	LedNextBrightness     = Action(ActLedNextBrightness) << 8
	LedNextAnimationSpeed = Action(ActLedNextAnimationSpeed) << 8

	BtOn               = Action(ActBtOn) << 8
	BtOff              = Action(ActBtOff) << 8
	BtBroadcast        = Action(ActBtBroadcast) << 8
	BtToggleLegacyMode = Action(ActBtToggleLegacyMode) << 8
	BtHostListQuery    = Action(ActBtHostListQuery) << 8
)

// Key sends a keycode
func Key(code KeyCode) Action { return newAction(ActKey, uint8(code)) }

func LayerMomentary(layer uint8) Action { return newAction(ActLayerMomentary, layer) }
func LayerToggle(layer uint8) Action    { return newAction(ActLayerToggle, layer) }
func LayerOn(layer uint8) Action        { return newAction(ActLayerOn, layer) }
func LayerOff(layer uint8) Action       { return newAction(ActLayerOff, layer) }

// LedTheme selects a theme by index
func LedTheme(index uint8) Action { return newAction(ActLedTheme, index) }

// Bluetooth host slots are 1-based
func BtSaveHost(slot uint8) Action    { return newAction(ActBtSaveHost, slot) }
func BtConnectHost(slot uint8) Action { return newAction(ActBtConnectHost, slot) }
func BtDeleteHost(slot uint8) Action  { return newAction(ActBtDeleteHost, slot) }

func BtLegacyMode(on bool) Action {
	if on {
		return newAction(ActBtLegacyMode, 1)
	}
	return newAction(ActBtLegacyMode, 0)
}

// Kind returns the variant tag
func (a Action) Kind() ActionKind { return ActionKind(a >> 8) }

// Arg returns the raw argument byte
func (a Action) Arg() uint8 { return uint8(a) }

// KeyCode returns the keycode of a Key action, or No
func (a Action) KeyCode() KeyCode {
	if a.Kind() != ActKey {
		return No
	}
	return KeyCode(a.Arg())
}

// Slot returns the host slot of a Bluetooth host action, or 0
func (a Action) Slot() uint8 {
	switch a.Kind() {
	case ActBtSaveHost, ActBtConnectHost, ActBtDeleteHost:
		return a.Arg()
	}
	return 0
}

// Layer returns the layer index of a layer action
func (a Action) Layer() (uint8, bool) {
	switch a.Kind() {
	case ActLayerMomentary, ActLayerToggle, ActLayerOn, ActLayerOff:
		return a.Arg(), true
	}
	return 0, false
}
