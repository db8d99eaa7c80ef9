package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

// PinWake drives the link wake line from a GPIO output.
// It implements protocol.WakeLine.
type PinWake struct {
	driver GPIODriver
	pin    GPIOPin
}

// NewPinWake configures pin as an output, initially low
func NewPinWake(driver GPIODriver, pin GPIOPin) (*PinWake, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	if err := driver.SetPin(pin, false); err != nil {
		return nil, err
	}
	return &PinWake{driver: driver, pin: pin}, nil
}

// Set drives the wake line, pin errors are ignored
func (w *PinWake) Set(high bool) {
	_ = w.driver.SetPin(w.pin, high)
}
