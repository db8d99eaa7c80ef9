//go:build rp2040

package main

import (
	"machine"

	"ap1key/core"
)

// initDebug routes core diagnostics to the USB CDC console
func initDebug() {
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.DebugPrintln("=== LED link bench ===")
}
