package comm

import (
	"encoding/binary"
	"io"
)

// Protocol geometry.
const (
	HeaderBytes    = 1
	AddressBytes   = 2
	MetaBytes      = HeaderBytes + AddressBytes
	MaxPayloadSize = 15
	MaxPacketSize  = MetaBytes + MaxPayloadSize
	FIFODepth      = 4096
)

const (
	headerWrite    byte = 0x80
	headerFIFO     byte = 0x40
	headerSizeMask byte = 0x3f
)

// Transaction is one of ContiguousRead, ContiguousWrite or FIFORead.
type Transaction interface {
	transaction()
}

// ContiguousRead reads NumBytes starting at a register address.
type ContiguousRead struct {
	NumBytes uint8
	Address  uint16
}

// ContiguousWrite writes Payload starting at a register address.
type ContiguousWrite struct {
	Payload []byte
	Address uint16
}

// FIFORead requests up to NumBytes from the FIFO stream ID.
type FIFORead struct {
	NumBytes uint16
	ID       uint8
}

func (ContiguousRead) transaction()  {}
func (ContiguousWrite) transaction() {}
func (FIFORead) transaction()        {}

// Packet is a validated transaction ready to be serialized.
type Packet struct {
	tx Transaction
}

// NewContiguousRead creates a packet reading numBytes at address.
func NewContiguousRead(numBytes int, address uint16) (*Packet, error) {
	if numBytes < 0 || numBytes > MaxPayloadSize {
		return nil, &PayloadTooLargeError{Max: MaxPayloadSize, Got: numBytes}
	}
	return &Packet{tx: ContiguousRead{NumBytes: uint8(numBytes), Address: address}}, nil
}

// ContiguousReadFor creates a packet reading a value of the codec's type.
func ContiguousReadFor[T any](c Codec[T], address uint16) (*Packet, error) {
	return NewContiguousRead(c.Size(), address)
}

// NewContiguousWrite creates a packet writing payload at address.
// The payload is copied.
func NewContiguousWrite(payload []byte, address uint16) (*Packet, error) {
	if len(payload) > MaxPayloadSize {
		return nil, &PayloadTooLargeError{Max: MaxPayloadSize, Got: len(payload)}
	}
	return &Packet{tx: ContiguousWrite{Payload: append([]byte(nil), payload...), Address: address}}, nil
}

// NewFIFORead creates a packet requesting numBytes from FIFO id.
// Only the low 6 bits of id fit in the header; higher bits are dropped.
func NewFIFORead(numBytes int, id uint8) (*Packet, error) {
	if numBytes < 0 || numBytes > FIFODepth {
		return nil, &FIFODepthExceededError{Depth: FIFODepth, Got: numBytes}
	}
	return &Packet{tx: FIFORead{NumBytes: uint16(numBytes), ID: id}}, nil
}

// Transaction returns the wrapped transaction.
func (p *Packet) Transaction() Transaction {
	return p.tx
}

// Bytes returns the encoded frame.
func (p *Packet) Bytes() ([]byte, error) {
	b := make([]byte, 0, MaxPacketSize)
	switch tx := p.tx.(type) {
	case ContiguousRead:
		b = append(b, tx.NumBytes&headerSizeMask)
		b = binary.LittleEndian.AppendUint16(b, tx.Address)
		if len(b) != MetaBytes {
			return nil, &MalformedPacketError{Kind: ReadPacket, Expected: MetaBytes, Got: len(b)}
		}
	case FIFORead:
		b = append(b, headerFIFO|(tx.ID&headerSizeMask))
		b = binary.LittleEndian.AppendUint16(b, tx.NumBytes)
		if len(b) != MetaBytes {
			return nil, &MalformedPacketError{Kind: ReadPacket, Expected: MetaBytes, Got: len(b)}
		}
	case ContiguousWrite:
		b = append(b, headerWrite|byte(len(tx.Payload)))
		b = binary.LittleEndian.AppendUint16(b, tx.Address)
		b = append(b, tx.Payload...)
		if expected := MetaBytes + len(tx.Payload); len(b) != expected {
			return nil, &MalformedPacketError{Kind: WritePacket, Expected: expected, Got: len(b)}
		}
	default:
		return nil, &MalformedPacketError{Kind: ReadPacket, Expected: MetaBytes}
	}
	return b, nil
}

// WriteTo writes the encoded frame.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	b, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}
