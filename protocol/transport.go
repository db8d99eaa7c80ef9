package protocol

// MessageHandler receives every decoded frame except the wake-ack
type MessageHandler func(msg *Message)

// FaultHandler is told about an internal fault after the transport has reset itself
type FaultHandler func(err error)

// ReceiveStage is the state of the receive machine
type ReceiveStage uint8

const (
	AwaitingHeader ReceiveStage = iota
	AwaitingBody
)

func (s ReceiveStage) String() string {
	if s == AwaitingBody {
		return "body"
	}
	return "header"
}

// Transport runs the half-duplex link to the companion MCU.
//
// Every frame is received in two transfers: the 2-byte header, then the
// number of bytes the header declares. Sending is two-phase: Send queues the
// encoded frame and pulses the wake line, and the queued transfer is only
// started once the peer answers with the wake-ack frame.
//
// Poll, TxComplete and Send must all be called from the same execution
// context (the main loop or the transfer-complete interrupt); there is no
// locking.
type Transport struct {
	rx   Channel
	tx   Channel
	wake WakeLine

	sendBuf []byte
	recvBuf []byte

	stage     ReceiveStage
	maxLength int
	txArmed   bool // tx enabled by a wake-ack and not yet completed

	handler      MessageHandler
	faultHandler FaultHandler
}

// NewTransport creates a transport owning sendBuf and recvBuf for its whole
// lifetime and arms the first header receive.
func NewTransport(rx, tx Channel, wake WakeLine, sendBuf, recvBuf []byte, handler MessageHandler) *Transport {
	if len(sendBuf) < HeaderSize+1 || len(recvBuf) < HeaderSize+1 {
		panic("protocol: transport buffers too small")
	}
	if wake == nil {
		wake = NopWake
	}

	maxLength := len(recvBuf) - HeaderSize
	if maxLength > MaxFrameLength {
		maxLength = MaxFrameLength
	}

	t := &Transport{
		rx:        rx,
		tx:        tx,
		wake:      wake,
		sendBuf:   sendBuf,
		recvBuf:   recvBuf,
		maxLength: maxLength,
		handler:   handler,
	}
	t.tx.Disable()
	t.tx.Configure(t.sendBuf[:0])
	t.armHeader()
	return t
}

// SetHandler replaces the message handler
func (t *Transport) SetHandler(handler MessageHandler) {
	t.handler = handler
}

// SetFaultHandler installs a fault handler. Without one an internal fault panics.
func (t *Transport) SetFaultHandler(handler FaultHandler) {
	t.faultHandler = handler
}

// Stage returns the current receive stage
func (t *Transport) Stage() ReceiveStage {
	return t.stage
}

// MaxLength returns the largest length byte the receive buffer can hold
func (t *Transport) MaxLength() int {
	return t.maxLength
}

// Busy reports whether a frame is queued or in flight
func (t *Transport) Busy() bool {
	return t.tx.Remaining() != 0
}

// Poll advances the receive machine. It does nothing unless the receive
// channel has signalled completion.
func (t *Transport) Poll() {
	if !t.rx.Complete() {
		return
	}
	t.rx.ClearComplete()

	switch t.stage {
	case AwaitingHeader:
		// The peer is answering, the wake request has been seen
		t.wake.Set(false)

		length := int(t.recvBuf[positionLength])
		if length == 0 || length > t.maxLength {
			t.fault(ErrInvalidHeader)
			return
		}

		t.stage = AwaitingBody
		t.rx.Disable()
		t.rx.Configure(t.recvBuf[HeaderSize : HeaderSize+length])
		t.rx.Enable()

	case AwaitingBody:
		if t.rx.Remaining() != 0 {
			t.fault(ErrIncompleteBody)
			return
		}

		length := int(t.recvBuf[positionLength])
		header := [HeaderSize]byte{t.recvBuf[positionKind], t.recvBuf[positionLength]}
		msg := DecodeFrame(header, t.recvBuf[HeaderSize:HeaderSize+length])

		if msg.IsWakeAck() {
			// Peer is ready, start the frame queued by Send
			if t.tx.Remaining() != 0 {
				t.txArmed = true
				t.tx.Enable()
			}
		} else if t.handler != nil {
			t.handler(&msg)
		}

		t.armHeader()
	}
}

// Send queues a frame and wakes the peer. It never blocks: if a previous frame
// is still queued or in flight it returns ErrLinkBusy without touching the
// send buffer.
func (t *Transport) Send(kind Kind, operation uint8, payload []byte) error {
	if t.tx.Remaining() != 0 {
		return ErrLinkBusy
	}

	n, err := EncodeFrame(t.sendBuf, kind, operation, payload)
	if err != nil {
		return err
	}

	// Load the count now, the transfer itself starts on wake-ack
	t.tx.Disable()
	t.tx.Configure(t.sendBuf[:n])

	t.armHeader()

	t.wake.Set(false)
	t.wake.Set(true)
	return nil
}

// TxComplete handles the transmit-complete signal. Calling it with no
// completion pending is a no-op.
func (t *Transport) TxComplete() {
	if !t.tx.Complete() {
		return
	}
	if !t.txArmed {
		t.fault(ErrSpuriousComplete)
		return
	}
	t.tx.ClearComplete()
	t.tx.Disable()
	t.txArmed = false
}

// Reset abandons any queued or in-flight frame and restarts the receive machine
func (t *Transport) Reset() {
	t.tx.Disable()
	t.tx.ClearComplete()
	t.tx.Configure(t.sendBuf[:0])
	t.txArmed = false

	t.wake.Set(false)
	t.rx.ClearComplete()
	t.armHeader()
}

// armHeader programs a 2-byte receive at offset 0
func (t *Transport) armHeader() {
	t.stage = AwaitingHeader
	t.rx.Disable()
	t.rx.Configure(t.recvBuf[:HeaderSize])
	t.rx.Enable()
}

func (t *Transport) fault(err error) {
	t.Reset()
	if t.faultHandler == nil {
		panic("protocol: " + err.Error())
	}
	t.faultHandler(err)
}
