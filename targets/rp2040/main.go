//go:build rp2040

package main

import (
	"image/color"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ws2812"

	"ap1key/core"
	"ap1key/protocol"
)

// Board wiring
const (
	linkTX    = machine.GPIO4
	linkRX    = machine.GPIO5
	wakePin   = core.GPIOPin(6)
	powerPin  = core.GPIOPin(7)
	stripPin  = machine.GPIO16
	linkBaud  = 115200
	pushEvery = 2 * time.Second
	flashRate = 250 * time.Millisecond
)

var (
	sendBuf [protocol.BufferSize]byte
	recvBuf [protocol.BufferSize]byte

	transport *protocol.Transport
	led       *core.LED
)

func main() {
	initDebug()

	link := uartx.UART1
	if err := link.Configure(uartx.UARTConfig{
		BaudRate: linkBaud,
		TX:       linkTX,
		RX:       linkRX,
	}); err != nil {
		core.DebugPrintln("link uart: " + err.Error())
		return
	}

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	wake, err := core.NewPinWake(core.MustGPIO(), wakePin)
	if err != nil {
		core.DebugPrintln("wake pin: " + err.Error())
		return
	}

	// The UART has no DMA here, run the channels as a byte stream
	periph := protocol.NewStreamPeripheral(link, link)
	transport = protocol.NewTransport(periph.RX, periph.TX, wake, sendBuf[:], recvBuf[:], nil)

	led = core.NewLED(transport)
	transport.SetHandler(led.HandleMessage)
	transport.SetFaultHandler(func(err error) {
		core.RecordFault(err)
		core.DumpLinkRing()
	})

	if err := led.SetPowerPin(core.MustGPIO(), powerPin); err == nil {
		led.On()
	}

	stripPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := ws2812.NewWS2812(stripPin)
	pixels := make([]color.RGBA, core.KeyCount)

	// Simulated keyboard: walk the connected host through the saved slots
	status := core.BluetoothStatus{SavedHosts: 0x07, ConnectedHost: 1, Mode: core.BluetoothBle}
	theme := core.RenderTheme(&core.BtLayout, core.State{BluetoothStatus: status})

	lastPush := time.Now()
	lastFrame := time.Now()
	flashOn := true

	for {
		transport.Poll()
		transport.TxComplete()

		now := time.Now()
		if now.Sub(lastPush) >= pushEvery {
			err := led.PushBluetoothTheme(core.StaticBluetooth(status), false)
			switch err {
			case nil:
				lastPush = now
				theme = core.RenderTheme(&core.BtLayout, core.State{BluetoothStatus: status})
				status.ConnectedHost = status.ConnectedHost%core.MaxHostSlot + 1
			case protocol.ErrLinkBusy:
				// Retried on the next pass
			default:
				core.DebugPrintln("push: " + err.Error())
				lastPush = now
			}
		}

		if now.Sub(lastFrame) >= flashRate {
			lastFrame = now
			flashOn = !flashOn
			previewTheme(&theme, flashOn, pixels)
			strip.WriteColors(pixels)
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// previewTheme maps the colour table onto one strip pixel per key
func previewTheme(theme *core.Theme, flashOn bool, pixels []color.RGBA) {
	for i := range pixels {
		c, ok := theme.At(i)
		if !ok || c.Mode == core.LedModeOff || (c.Mode == core.LedModeFlash && !flashOn) {
			pixels[i] = color.RGBA{}
			continue
		}
		pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
}
