package protocol

import "io"

// ByteSource is the receive side of a byte stream (an interrupt-driven UART
// ring buffer, or a FIFO fed by a host reader goroutine)
type ByteSource interface {
	Buffered() int
	Read(p []byte) (int, error)
}

// StreamPeripheral emulates the rx/tx transfer channels on top of a plain
// byte stream, for boards where the link UART has no DMA.
type StreamPeripheral struct {
	RX *StreamRX
	TX *StreamTX
}

// NewStreamPeripheral creates a channel pair over w and src
func NewStreamPeripheral(w io.Writer, src ByteSource) *StreamPeripheral {
	return &StreamPeripheral{
		RX: &StreamRX{src: src},
		TX: &StreamTX{w: w},
	}
}

// Err returns the first I/O error seen by either direction
func (p *StreamPeripheral) Err() error {
	if p.RX.err != nil {
		return p.RX.err
	}
	return p.TX.err
}

// StreamRX fills its window from the byte source whenever completion is polled
type StreamRX struct {
	src      ByteSource
	buf      []byte
	pos      int
	enabled  bool
	complete bool
	err      error
}

func (c *StreamRX) Configure(buf []byte) {
	c.buf = buf
	c.pos = 0
	c.complete = false
}

func (c *StreamRX) Enable()  { c.enabled = true }
func (c *StreamRX) Disable() { c.enabled = false }

func (c *StreamRX) Remaining() int { return len(c.buf) - c.pos }

func (c *StreamRX) Complete() bool {
	if c.enabled && !c.complete {
		c.service()
	}
	return c.complete
}

func (c *StreamRX) ClearComplete() { c.complete = false }

func (c *StreamRX) service() {
	if c.pos >= len(c.buf) || c.src.Buffered() == 0 {
		return
	}
	n, err := c.src.Read(c.buf[c.pos:])
	c.pos += n
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	if c.pos == len(c.buf) {
		c.complete = true
	}
}

// StreamTX writes its whole window as soon as it is enabled
type StreamTX struct {
	w        io.Writer
	buf      []byte
	pos      int
	enabled  bool
	complete bool
	err      error
}

func (c *StreamTX) Configure(buf []byte) {
	c.buf = buf
	c.pos = 0
}

func (c *StreamTX) Enable() {
	c.enabled = true
	if c.pos >= len(c.buf) {
		return
	}
	n, err := c.w.Write(c.buf[c.pos:])
	c.pos += n
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return
	}
	if c.pos == len(c.buf) {
		c.complete = true
	}
}

func (c *StreamTX) Disable() { c.enabled = false }

func (c *StreamTX) Remaining() int { return len(c.buf) - c.pos }

func (c *StreamTX) Complete() bool { return c.complete }

func (c *StreamTX) ClearComplete() { c.complete = false }
