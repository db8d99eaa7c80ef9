package core

// KeyCode is a USB HID keyboard usage ID. The numeric order is the canonical
// key ordering used for range checks.
type KeyCode uint8

const (
	No KeyCode = 0x00

	A KeyCode = 0x04 + iota - 1
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
	N1
	N2
	N3
	N4
	N5
	N6
	N7
	N8
	N9
	N0
	Enter
	Escape
	BSpace
	Tab
	Space
	Minus
	Equal
	LBracket
	RBracket
	BSlash
	NonUSHash
	SColon
	Quote
	Grave
	Comma
	Dot
	Slash
	CapsLock
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	PScreen
	ScrollLock
	Pause
	Insert
	Home
	PgUp
	Delete
	End
	PgDown
	Right
	Left
	Down
	Up
	Numlock
	KpSlash
	KpAsterisk
	KpMinus
	KpPlus
	KpEnter
	Kp1
	Kp2
	Kp3
	Kp4
	Kp5
	Kp6
	Kp7
	Kp8
	Kp9
	Kp0
	KpDot
)

const (
	LCtrl KeyCode = 0xe0 + iota
	LShift
	LAlt
	LMeta
	RCtrl
	RShift
	RAlt
	RMeta
)

// IsModifier reports whether the key is one of the eight HID modifiers
func (k KeyCode) IsModifier() bool {
	return k >= LCtrl && k <= RMeta
}

// IsNavigation reports whether the key lies in the navigation cluster,
// print-screen through arrow-up
func (k KeyCode) IsNavigation() bool {
	return k >= PScreen && k <= Up
}

// Digit returns the host slot number of the 1..4 number-row keys, or 0
func (k KeyCode) Digit() uint8 {
	if k >= N1 && k <= N4 {
		return uint8(k-N1) + 1
	}
	return 0
}
