package comm

import (
	"io"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/hostcomm/pkg/framework"
)

// Fixed register map.
const (
	InputBaseAddress  uint16 = 0
	OutputBaseAddress uint16 = 64
	CommandRegAddress uint16 = 128
	StatusRegAddress  uint16 = 129
)

// Command register opcodes.
const (
	CmdStart uint8 = 0x80
	CmdStop  uint8 = 0x00
)

// StatusDoneBit is set in the status register when a computation completes.
const StatusDoneBit uint8 = 0x80

// SettleInterval is the delay between a request and reading its response.
// The device has no readiness signal, this is a latency assumption.
const SettleInterval = 100 * time.Millisecond

// State is the logical acquisition state of a session.
type State int

const (
	// StateIdle means no acquisition was started.
	StateIdle State = iota
	// StateAcquiring means start was sent and stop was not.
	StateAcquiring
)

func (s State) String() string {
	if s == StateAcquiring {
		return "acquiring"
	}
	return "idle"
}

// Session drives the protocol over a Transport.
// A Session is not safe for concurrent use.
type Session struct {
	// Settle is the wait before reading a response, SettleInterval by default.
	Settle time.Duration

	transport Transport
	state     State
	closed    bool

	writeBuf   [MaxPacketSize]byte
	readRegBuf [MaxPayloadSize]byte
	fifoBuf    [FIFODepth]byte
}

// NewSession creates a session owning t.
func NewSession(t Transport) *Session {
	return &Session{Settle: SettleInterval, transport: t}
}

// State returns the logical acquisition state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) settle() {
	if s.Settle > 0 {
		time.Sleep(s.Settle)
	}
}

func (s *Session) sendPacket(p *Packet) error {
	if s.closed {
		return ErrSessionClosed
	}
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	n := copy(s.writeBuf[:], b)
	glog.V(4).Infof("send packet % x", s.writeBuf[:n])
	err = writeAll(s.transport, s.writeBuf[:n])
	clear(s.writeBuf[:])
	if err != nil {
		return &IOError{Op: OpSend, Err: err}
	}
	return nil
}

func (s *Session) readExact(n int) ([]byte, error) {
	_, err := io.ReadFull(s.transport, s.readRegBuf[:n])
	if err != nil {
		clear(s.readRegBuf[:])
		return nil, &IOError{Op: OpRead, Err: err}
	}
	b := append([]byte(nil), s.readRegBuf[:n]...)
	clear(s.readRegBuf[:])
	glog.V(4).Infof("recv % x", b)
	return b, nil
}

// ReadBytes reads numBytes of contiguous registers starting at address.
func (s *Session) ReadBytes(numBytes int, address uint16) ([]byte, error) {
	p, err := NewContiguousRead(numBytes, address)
	if err != nil {
		return nil, err
	}
	if err = s.sendPacket(p); err != nil {
		return nil, err
	}
	s.settle()
	return s.readExact(numBytes)
}

// WriteBytes writes payload to contiguous registers starting at address.
func (s *Session) WriteBytes(payload []byte, address uint16) error {
	p, err := NewContiguousWrite(payload, address)
	if err != nil {
		return err
	}
	return s.sendPacket(p)
}

// Read reads a value of the codec's type at address.
func Read[T any](s *Session, c Codec[T], address uint16) (T, error) {
	var v T
	b, err := s.ReadBytes(c.Size(), address)
	if err != nil {
		return v, err
	}
	return c.Decode(b)
}

// Write writes v encoded by the codec at address.
// An encoding not exactly Size() bytes wide, e.g. an array value with the
// wrong element count, is rejected before anything is sent.
func Write[T any](s *Session, c Codec[T], v T, address uint16) error {
	b := c.Encode(v)
	if len(b) != c.Size() {
		return &ByteCountMismatchError{Type: c.TypeName(), Expected: c.Size(), Got: len(b)}
	}
	return s.WriteBytes(b, address)
}

// ReadFIFO requests numBytes from FIFO id and decodes the returned records.
// Stale bytes on the transport are discarded first. The device streams at
// its own pace, so fewer bytes than requested is not an error.
func (s *Session) ReadFIFO(numBytes int, id uint8) ([]Record, error) {
	p, err := NewFIFORead(numBytes, id)
	if err != nil {
		return nil, err
	}
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err = s.transport.ClearBuffers(); err != nil {
		return nil, &IOError{Op: OpClear, Err: err}
	}
	s.settle()
	if err = s.sendPacket(p); err != nil {
		return nil, err
	}
	if numBytes == 0 {
		return []Record{}, nil
	}
	n, err := s.transport.Read(s.fifoBuf[:numBytes])
	if err != nil {
		clear(s.fifoBuf[:])
		return nil, &IOError{Op: OpRead, Err: err}
	}
	glog.V(4).Infof("recv %d/%d FIFO bytes", n, numBytes)
	recs := DecodeRecords(s.fifoBuf[:n])
	clear(s.fifoBuf[:n])
	return recs, nil
}

// ReadFIFOAll requests a full FIFO depth from FIFO id.
func (s *Session) ReadFIFOAll(id uint8) ([]Record, error) {
	return s.ReadFIFO(FIFODepth, id)
}

// ReadStatusRegister reads the status register.
func (s *Session) ReadStatusRegister() (uint8, error) {
	return Read(s, U8, StatusRegAddress)
}

// ReadCommandRegister reads the command register.
func (s *Session) ReadCommandRegister() (uint8, error) {
	return Read(s, U8, CommandRegAddress)
}

// CalcIsDone reports whether the done bit of the status register is set.
// Callers needing completion poll this in a loop.
func (s *Session) CalcIsDone() (bool, error) {
	status, err := s.ReadStatusRegister()
	if err != nil {
		return false, err
	}
	return status&StatusDoneBit != 0, nil
}

// Start starts an acquisition or computation.
func (s *Session) Start() error {
	if err := Write(s, U8, CmdStart, CommandRegAddress); err != nil {
		return err
	}
	glog.V(2).Info("acquisition started")
	s.state = StateAcquiring
	return nil
}

// Stop stops the acquisition.
func (s *Session) Stop() error {
	if err := Write(s, U8, CmdStop, CommandRegAddress); err != nil {
		return err
	}
	glog.V(2).Info("acquisition stopped")
	s.state = StateIdle
	return nil
}

// ClearStatus resets the status register.
func (s *Session) ClearStatus() error {
	return Write(s, U8, 0, StatusRegAddress)
}

// Close stops the device, clears its status and releases the transport.
// Failures are logged and returned aggregated; Close never stops half way.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	glog.V(2).Info("closing FPGA session")
	var errs fx.AggregatedError
	if err := s.Stop(); err != nil {
		glog.Warningf("stop on close failed: %v", err)
		errs.Add(err)
	}
	if err := s.ClearStatus(); err != nil {
		glog.Warningf("clear status on close failed: %v", err)
		errs.Add(err)
	}
	s.closed = true
	if closer, ok := s.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			glog.Warningf("close transport failed: %v", err)
			errs.Add(err)
		}
	}
	return errs.Aggregate()
}
