package protocol

import "errors"

var (
	// ErrLinkBusy is returned by Send while a previous frame is still in flight.
	// It is the only recoverable error of the link; retrying is up to the caller.
	ErrLinkBusy = errors.New("link busy")

	// ErrPayloadTooLarge rejects a frame that does not fit the length byte or
	// the destination buffer. Nothing has been written when it is returned.
	ErrPayloadTooLarge = errors.New("payload too large")

	// Internal faults. The transport resets itself after reporting one.
	ErrInvalidHeader    = errors.New("invalid frame header")
	ErrIncompleteBody   = errors.New("incomplete frame body")
	ErrSpuriousComplete = errors.New("transfer complete with no outstanding transfer")
)
