package protocol

// EncodeFrame writes [kind][1+len(payload)][operation][payload...] into out
// and returns the number of bytes written.
func EncodeFrame(out []byte, kind Kind, operation uint8, payload []byte) (int, error) {
	length := 1 + len(payload)
	if length > MaxFrameLength || HeaderSize+length > len(out) {
		return 0, ErrPayloadTooLarge
	}

	out[positionKind] = byte(kind)
	out[positionLength] = byte(length)
	out[HeaderSize] = operation
	copy(out[HeaderSize+1:], payload)

	return HeaderSize + length, nil
}

// DecodeFrame builds a Message from a received header and body. The body must
// be exactly header[1] bytes long; the transport guarantees this, so any
// mismatch is a programming error.
func DecodeFrame(header [HeaderSize]byte, body []byte) Message {
	length := int(header[positionLength])
	if length == 0 || len(body) != length {
		panic("protocol: frame body does not match declared length")
	}
	return Message{
		Kind:      Kind(header[positionKind]),
		Operation: body[0],
		Payload:   body[1:length],
	}
}
