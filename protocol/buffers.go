package protocol

import (
	"errors"
	"sync"
)

// ErrFifoOverflow is returned when a write does not fit the FIFO
var ErrFifoOverflow = errors.New("fifo overflow")

// FifoBuffer is a circular buffer for serial I/O
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// Pop removes n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	for i := 0; i < n && f.read != f.write; i++ {
		f.read = (f.read + 1) % f.size
	}
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}

// SyncFifo is a FifoBuffer shared between a reader goroutine (Write) and the
// link loop (Read). It satisfies ByteSource and io.Writer.
type SyncFifo struct {
	mu   sync.Mutex
	fifo *FifoBuffer
}

// NewSyncFifo creates a SyncFifo holding up to capacity-1 bytes
func NewSyncFifo(capacity int) *SyncFifo {
	return &SyncFifo{fifo: NewFifoBuffer(capacity)}
}

func (s *SyncFifo) Write(p []byte) (int, error) {
	s.mu.Lock()
	n := s.fifo.Write(p)
	s.mu.Unlock()
	if n < len(p) {
		return n, ErrFifoOverflow
	}
	return n, nil
}

func (s *SyncFifo) Read(p []byte) (int, error) {
	s.mu.Lock()
	n := s.fifo.Read(p)
	s.mu.Unlock()
	return n, nil
}

func (s *SyncFifo) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Available()
}

// Reset drops any buffered bytes
func (s *SyncFifo) Reset() {
	s.mu.Lock()
	s.fifo.Reset()
	s.mu.Unlock()
}
