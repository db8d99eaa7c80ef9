package protocol

// Channel is one direction of the byte-transfer peripheral bound to the link
// UART (a DMA channel on the product hardware).
type Channel interface {
	// Configure sets the memory window and transfer count. The channel must
	// be disabled; the transfer starts on Enable.
	Configure(buf []byte)

	// Enable arms the channel and starts the configured transfer
	Enable()

	// Disable stops the channel. The remaining count is kept.
	Disable()

	// Remaining returns the number of bytes still to transfer
	Remaining() int

	// Complete reports whether the transfer-complete flag is pending
	Complete() bool

	// ClearComplete acknowledges the transfer-complete flag
	ClearComplete()
}

// WakeLine is the dedicated signal used to rouse the peer MCU
type WakeLine interface {
	Set(high bool)
}

// WakeFunc adapts a plain function to WakeLine
type WakeFunc func(high bool)

func (f WakeFunc) Set(high bool) { f(high) }

// NopWake is used where the wake pin is strapped in hardware
var NopWake WakeLine = WakeFunc(func(bool) {})
