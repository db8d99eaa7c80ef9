package core

/*
  ,-----------------------------------------------------------------------------.
  |Esc   |  1|   2|   3|   4|   5|   6|   7|   8|   9|   0|   -|   = |   Backsp |
  |-----------------------------------------------------------------------------|
  |Tab    |  Q  |  W  |  E  |  R  |  T  |  Y  |  U  |  I|   O|  P|  [|  ]|  \ ] |
  |-----------------------------------------------------------------------------|
  |Caps         |    A|    S|    D|    F|   G|  H|  J|  K|  L|  ;|  '|   #|Enter|
  |-----------------------------------------------------------------------------|
  |Shift      |    Z|     X|    C|     V|  B|  N|  M|  ,|  .|  /|     Shift     |
  |-----------------------------------------------------------------------------|
  |Ctrl |Meta | Alt |               Space                |Alt | Fn  | Anne |Ctrl|
  `-----------------------------------------------------------------------------'
*/

// Matrix geometry
const (
	Rows     = 5
	Columns  = 14
	KeyCount = Rows * Columns
)

// Physical key positions referenced by fixed payloads
const (
	KeyIndexN1    = 1
	KeyIndexN0    = 10
	KeyIndexEnter = 2*Columns + 13
)

// Layout binds an Action to every physical key position
type Layout [KeyCount]Action

const (
	LayerBase = 0
	LayerFn   = 1
	LayerFn2  = 2
	LayerBt   = 3

	NumLayers = 4
)

const __ = Transparent

var (
	fnM   = LayerMomentary(LayerFn)
	btM   = LayerMomentary(LayerBt)
	btOn  = LayerOn(LayerBt)
	btOff = LayerOff(LayerBt)
	kNo   = Key(No)

	ledNT  = LedNextTheme
	ledNB  = LedNextBrightness
	ledNAS = LedNextAnimationSpeed
)

// BaseLayout is the Dvorak base layer
var BaseLayout = Layout{
	Key(Escape), Key(N1), Key(N2), Key(N3), Key(N4), Key(N5), Key(N6), Key(N7), Key(N8), Key(N9), Key(N0), Key(LBracket), Key(RBracket), Key(BSpace),
	Key(Tab), Key(Quote), Key(Comma), Key(Dot), Key(P), Key(Y), Key(F), Key(G), Key(C), Key(R), Key(L), Key(Slash), Key(Equal), Key(BSlash),
	Key(LCtrl), Key(A), Key(O), Key(E), Key(U), Key(I), Key(D), Key(H), Key(T), Key(N), Key(S), Key(Minus), kNo, Key(Enter),
	Key(LShift), Key(SColon), Key(Q), Key(J), Key(K), Key(X), Key(B), Key(M), Key(W), Key(V), Key(Z), kNo, kNo, Key(RShift),
	fnM, Key(LMeta), Key(LAlt), kNo, kNo, Key(Space), kNo, kNo, kNo, kNo, Key(RMeta), fnM, btM, Key(Grave),
}

var FnLayout = Layout{
	Key(Grave), Key(F1), Key(F2), Key(F3), Key(F4), Key(F5), Key(F6), Key(F7), Key(F8), Key(F9), Key(F10), Key(F11), Key(F12), Key(Delete),
	__, Key(PgUp), Key(Numlock), Key(Kp8), Key(KpPlus), ledNB, ledNAS, ledNT, Key(Up), LedToggle, __, __, __, Key(PScreen),
	__, Key(Home), Key(Kp4), Key(Kp2), Key(Kp6), Key(Insert), Key(Home), Key(Left), Key(Down), Key(Right), Key(End), __, kNo, __,
	__, Key(PgDown), Key(KpSlash), Key(KpAsterisk), Key(KpMinus), Key(KpDot), btOn, __, __, __, __, kNo, kNo, __,
	__, __, __, kNo, kNo, Reset, kNo, kNo, kNo, kNo, __, __, __, __,
}

var Fn2Layout = Layout{
	LedOff, LedOn, ledNT, ledNAS, ledNB, __, __, __, __, __, __, __, __, __,
	__, __, __, __, __, __, __, __, __, __, __, __, __, __,
	__, __, __, __, __, __, __, __, __, __, __, __, kNo, __,
	__, __, __, __, __, __, __, __, __, __, __, __, __, __,
	__, __, __, kNo, kNo, __, kNo, kNo, kNo, kNo, __, __, __, __,
}

// BtLayout is the Bluetooth management layer
var BtLayout = Layout{
	btOff, BtConnectHost(1), BtConnectHost(2), BtConnectHost(3), BtConnectHost(4), UsbToggle, __, __, __, __, BtToggleLegacyMode, BtOff, BtBroadcast, BtOn,
	BtHostListQuery, BtSaveHost(1), BtSaveHost(2), BtSaveHost(3), BtSaveHost(4), __, __, __, __, __, __, __, __, __,
	__, BtDeleteHost(1), BtDeleteHost(2), BtDeleteHost(3), BtDeleteHost(4), __, __, __, __, __, __, __, kNo, __,
	__, __, __, __, __, LayerToggle(LayerBt), btOff, __, __, __, __, __, __, __,
	__, __, __, kNo, kNo, __, kNo, kNo, kNo, kNo, __, __, __, __,
}

// Layers indexed by layer number
var Layers = [NumLayers]*Layout{&BaseLayout, &FnLayout, &Fn2Layout, &BtLayout}

// LayerStack has bit n set while layer n is active. The base layer is
// always active.
type LayerStack uint8

func (s LayerStack) With(layer uint8) LayerStack    { return s | 1<<layer }
func (s LayerStack) Without(layer uint8) LayerStack { return s &^ (1 << layer) }
func (s LayerStack) Toggle(layer uint8) LayerStack  { return s ^ 1<<layer }

// Active reports whether layer is in the stack
func (s LayerStack) Active(layer uint8) bool {
	return layer == LayerBase || s&(1<<layer) != 0
}

// Top returns the highest active layer
func (s LayerStack) Top() uint8 {
	for layer := NumLayers - 1; layer > LayerBase; layer-- {
		if s.Active(uint8(layer)) {
			return uint8(layer)
		}
	}
	return LayerBase
}

// Resolve returns the binding for a key position: the topmost active layer
// whose action is not Transparent wins.
func (s LayerStack) Resolve(layers *[NumLayers]*Layout, index int) Action {
	for layer := NumLayers - 1; layer >= LayerBase; layer-- {
		if !s.Active(uint8(layer)) {
			continue
		}
		if a := layers[layer][index]; a != Transparent {
			return a
		}
	}
	return Nop
}

// Effective flattens the stack into a single layout
func (s LayerStack) Effective(layers *[NumLayers]*Layout) Layout {
	var out Layout
	for i := range out {
		out[i] = s.Resolve(layers, i)
	}
	return out
}
