package serial

import (
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path of the USB-UART adapter wired to the LED MCU
	// (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the LED link
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the LED link defaults
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200, // LED MCU UART rate
		ReadTimeout: 50,
	}
}
