// Package bench drives an LED companion MCU from a host through a USB-UART
// adapter, running the firmware link core unchanged.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"ap1key/core"
	"ap1key/host/config"
	"ap1key/host/serial"
	"ap1key/protocol"
)

// ErrClosed is returned for commands submitted after the link loop stopped
var ErrClosed = errors.New("bench: link loop not running")

const (
	rxFifoSize   = 4096
	readChunk    = 256
	pollPasses   = 4 // header and body of up to two queued frames
	messageLimit = 64
)

// request is one LED command executed on the link loop goroutine
type request struct {
	run  func(led *core.LED) error
	resp chan error
}

// Status is a snapshot of the rig shown by the CLI and the HTTP API
type Status struct {
	Device    string               `json:"device"`
	Bluetooth core.BluetoothStatus `json:"bluetooth"`
	Mode      string               `json:"mode"`
	USBReport bool                 `json:"usb_report"`
	Busy      bool                 `json:"busy"`
	Stage     string               `json:"stage"`
	Faults    int                  `json:"faults"`
	Messages  []string             `json:"messages"`
}

// Bench owns the serial port and the link loop. The transport and LED
// controller are only touched from the loop goroutine; everything else goes
// through requests or the mutex-guarded state.
type Bench struct {
	cfg    *config.Config
	port   serial.Port
	logger *log.Logger

	rx        *protocol.SyncFifo
	periph    *protocol.StreamPeripheral
	transport *protocol.Transport
	led       *core.LED

	requests chan request
	stopped  chan struct{}
	once     sync.Once

	mu        sync.Mutex
	status    core.BluetoothStatus
	usbReport bool
	busy      bool
	stage     protocol.ReceiveStage
	faults    int
	messages  []string
}

// Open opens the configured serial port and builds a rig over it
func Open(cfg *config.Config, logger *log.Logger) (*Bench, error) {
	port, err := serial.Open(cfg.Serial())
	if err != nil {
		return nil, fmt.Errorf("failed to open LED link: %w", err)
	}
	b, err := New(port, cfg, logger)
	if err != nil {
		port.Close()
		return nil, err
	}
	return b, nil
}

// New builds a rig over an already open port
func New(port serial.Port, cfg *config.Config, logger *log.Logger) (*Bench, error) {
	status, err := cfg.BluetoothStatus()
	if err != nil {
		return nil, err
	}

	b := &Bench{
		cfg:       cfg,
		port:      port,
		logger:    logger,
		rx:        protocol.NewSyncFifo(rxFifoSize),
		requests:  make(chan request),
		stopped:   make(chan struct{}),
		status:    status,
		usbReport: cfg.USBReport,
	}

	// The adapter has no wake line, the peer is always awake
	b.periph = protocol.NewStreamPeripheral(port, b.rx)
	b.transport = protocol.NewTransport(b.periph.RX, b.periph.TX, protocol.NopWake,
		make([]byte, protocol.BufferSize), make([]byte, protocol.BufferSize), nil)
	b.led = core.NewLED(b.transport)
	b.led.SetDiagnosticSink(b.diagnostic)
	b.transport.SetHandler(b.led.HandleMessage)
	b.transport.SetFaultHandler(b.fault)

	return b, nil
}

// Run starts the serial reader and runs the link loop until ctx is done or
// the port fails.
func (b *Bench) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(b.stopped)

	readErr := make(chan error, 1)
	go func() {
		readErr <- b.readLoop(ctx)
		cancel()
	}()

	ticker := time.NewTicker(b.cfg.PollInterval())
	defer ticker.Stop()

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case req := <-b.requests:
			req.resp <- req.run(b.led)
			b.service()
		case <-ticker.C:
			b.service()
		}
		if err = b.periph.Err(); err != nil {
			err = fmt.Errorf("LED link write failed: %w", err)
			break loop
		}
	}

	if err == nil {
		select {
		case err = <-readErr:
		default:
		}
	}
	core.DumpLinkRing()
	return err
}

func (b *Bench) readLoop(ctx context.Context) error {
	buf := make([]byte, readChunk)
	for ctx.Err() == nil {
		n, err := b.port.Read(buf)
		if n > 0 {
			if _, werr := b.rx.Write(buf[:n]); werr != nil {
				b.logger.Printf("link: dropped input: %s", werr)
			}
		}
		if err != nil && err != io.EOF {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("LED link read failed: %w", err)
		}
	}
	return nil
}

// service advances the transport; called from the loop goroutine only
func (b *Bench) service() {
	for i := 0; i < pollPasses; i++ {
		b.transport.Poll()
		b.transport.TxComplete()
	}

	b.mu.Lock()
	b.busy = b.transport.Busy()
	b.stage = b.transport.Stage()
	b.mu.Unlock()
}

func (b *Bench) diagnostic(line string) {
	b.logger.Print(line)

	b.mu.Lock()
	b.messages = append(b.messages, line)
	if len(b.messages) > messageLimit {
		b.messages = b.messages[len(b.messages)-messageLimit:]
	}
	b.mu.Unlock()
}

func (b *Bench) fault(err error) {
	core.RecordFault(err)
	b.logger.Printf("link: fault: %s, transport reset", err)

	b.mu.Lock()
	b.faults++
	b.mu.Unlock()
}

// Do runs cmd on the link loop. A busy link is retried up to the configured
// number of times; other errors are returned as is.
func (b *Bench) Do(ctx context.Context, cmd func(led *core.LED) error) error {
	var err error
	for attempt := 0; attempt <= b.cfg.BusyRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.cfg.BusyDelay()):
			}
		}

		err = b.submit(ctx, cmd)
		if err != protocol.ErrLinkBusy {
			return err
		}
	}
	return fmt.Errorf("gave up after %d retries: %w", b.cfg.BusyRetries, err)
}

func (b *Bench) submit(ctx context.Context, cmd func(led *core.LED) error) error {
	req := request{run: cmd, resp: make(chan error, 1)}
	select {
	case b.requests <- req:
	case <-b.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bench) NextTheme(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).NextTheme)
}

func (b *Bench) NextBrightness(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).NextBrightness)
}

func (b *Bench) NextAnimationSpeed(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).NextAnimationSpeed)
}

func (b *Bench) ThemeMode(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).ThemeMode)
}

func (b *Bench) Toggle(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).Toggle)
}

func (b *Bench) GetThemeID(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).GetThemeID)
}

func (b *Bench) BluetoothPinMode(ctx context.Context) error {
	return b.Do(ctx, (*core.LED).BluetoothPinMode)
}

func (b *Bench) SetTheme(ctx context.Context, index uint8) error {
	return b.Do(ctx, func(led *core.LED) error { return led.SetTheme(index) })
}

// SendMusic pushes visualizer levels; levels is copied before returning
func (b *Bench) SendMusic(ctx context.Context, levels []byte) error {
	levels = append([]byte(nil), levels...)
	return b.Do(ctx, func(led *core.LED) error { return led.SendMusic(levels) })
}

// PushBluetoothTheme renders the Bluetooth layer for the rig's current state
func (b *Bench) PushBluetoothTheme(ctx context.Context) error {
	b.mu.Lock()
	provider := core.StaticBluetooth(b.status)
	usb := b.usbReport
	b.mu.Unlock()

	return b.Do(ctx, func(led *core.LED) error { return led.PushBluetoothTheme(provider, usb) })
}

// SetBluetoothStatus replaces the simulated Bluetooth state
func (b *Bench) SetBluetoothStatus(status core.BluetoothStatus) {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
}

// SetUSBReport sets the simulated USB-report flag
func (b *Bench) SetUSBReport(on bool) {
	b.mu.Lock()
	b.usbReport = on
	b.mu.Unlock()
}

// Status implements core.BluetoothProvider
func (b *Bench) Status() core.BluetoothStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Snapshot returns the rig state
func (b *Bench) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Status{
		Device:    b.cfg.Device,
		Bluetooth: b.status,
		Mode:      b.status.Mode.String(),
		USBReport: b.usbReport,
		Busy:      b.busy,
		Stage:     b.stage.String(),
		Faults:    b.faults,
		Messages:  append([]string(nil), b.messages...),
	}
}

// Close closes the serial port, which also ends Run
func (b *Bench) Close() error {
	var err error
	b.once.Do(func() {
		err = b.port.Close()
	})
	return err
}
