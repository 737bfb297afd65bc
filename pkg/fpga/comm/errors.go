package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionTaken indicates the session was already handed out by an Owner.
	ErrSessionTaken = errors.New("session already taken")
	// ErrSessionClosed indicates the session has been torn down.
	ErrSessionClosed = errors.New("session closed")
)

// PayloadTooLargeError is returned when a read or write value exceeds the
// protocol payload limit.
type PayloadTooLargeError struct {
	Max int
	Got int
}

// Error implements error.
func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("protocol only supports %d payload bytes, got %d", e.Max, e.Got)
}

// FIFODepthExceededError is returned when a FIFO read requests more bytes
// than the FIFO holds.
type FIFODepthExceededError struct {
	Depth int
	Got   int
}

// Error implements error.
func (e *FIFODepthExceededError) Error() string {
	return fmt.Sprintf("FIFO read of %d bytes exceeds depth %d", e.Got, e.Depth)
}

// PacketKind distinguishes the two malformed frame checks.
type PacketKind int

const (
	// ReadPacket covers contiguous and FIFO reads.
	ReadPacket PacketKind = iota
	// WritePacket covers contiguous writes.
	WritePacket
)

func (k PacketKind) String() string {
	if k == WritePacket {
		return "write"
	}
	return "read"
}

// MalformedPacketError reports an assembled frame whose length doesn't match
// its transaction kind.
type MalformedPacketError struct {
	Kind     PacketKind
	Expected int
	Got      int
}

// Error implements error.
func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("%s packet should be %d bytes but serialized with %d bytes", e.Kind, e.Expected, e.Got)
}

// ByteCountMismatchError is returned by Codec.Decode when the input length is
// not the exact width of the target type.
type ByteCountMismatchError struct {
	Type     string
	Expected int
	Got      int
}

// Error implements error.
func (e *ByteCountMismatchError) Error() string {
	return fmt.Sprintf("wrong number of bytes (%d) to decode %s (need %d)", e.Got, e.Type, e.Expected)
}

// IOOp names the transport operation that failed.
type IOOp string

// Transport operations.
const (
	OpSend  IOOp = "send packet"
	OpRead  IOOp = "read bytes"
	OpClear IOOp = "clear buffers"
)

// IOError wraps a transport failure.
type IOError struct {
	Op  IOOp
	Err error
}

// Error implements error.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the transport error.
func (e *IOError) Unwrap() error {
	return e.Err
}
