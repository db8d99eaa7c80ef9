package core

import "ap1key/protocol"

const (
	// ThemeMarker opens every set-individual-keys payload
	ThemeMarker = 0xca

	themeHeaderSize = 2
	themeEntrySize  = 5

	// ThemePayloadMax is the payload size with every key lit
	ThemePayloadMax = themeHeaderSize + themeEntrySize*KeyCount
)

// Theme is the sparse per-key colour table sent to the LED MCU
type Theme struct {
	colors [KeyCount]Color
	lit    [KeyCount]bool
}

// RenderTheme evaluates the colour policy for every position of layout
func RenderTheme(layout *Layout, s State) Theme {
	var t Theme
	for i, action := range layout {
		if action == Nop {
			continue
		}
		if c, ok := ColorFor(action, s); ok {
			t.colors[i] = c
			t.lit[i] = true
		}
	}
	return t
}

// At returns the colour at a key position
func (t *Theme) At(index int) (Color, bool) {
	if index < 0 || index >= KeyCount {
		return Color{}, false
	}
	return t.colors[index], t.lit[index]
}

// Count returns the number of lit keys
func (t *Theme) Count() int {
	n := 0
	for _, lit := range t.lit {
		if lit {
			n++
		}
	}
	return n
}

// Serialize writes [0xCA][1+N][index r g b mode]*N, lit keys in ascending
// position order, and returns 2+5N.
func (t *Theme) Serialize(out []byte) (int, error) {
	count := t.Count()
	size := themeHeaderSize + themeEntrySize*count
	if len(out) < size || count+1 > 0xff {
		return 0, protocol.ErrPayloadTooLarge
	}

	out[0] = ThemeMarker
	out[1] = byte(count + 1)

	offset := themeHeaderSize
	for i, lit := range t.lit {
		if !lit {
			continue
		}
		c := t.colors[i]
		out[offset] = byte(i)
		out[offset+1] = c.R
		out[offset+2] = c.G
		out[offset+3] = c.B
		out[offset+4] = byte(c.Mode)
		offset += themeEntrySize
	}
	return offset, nil
}
