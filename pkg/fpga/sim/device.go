// Package sim simulates the FPGA accelerator behind a comm.Transport.
package sim

import (
	"bytes"
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

// ErrNoData is returned by Read when no response is pending,
// the way a serial port reports a read timeout.
var ErrNoData error = noDataError{}

type noDataError struct{}

func (noDataError) Error() string   { return "no data" }
func (noDataError) Timeout() bool   { return true }
func (noDataError) Temporary() bool { return true }

// StartFunc runs when the start opcode is written to the command register.
// It is called with the device lock held.
type StartFunc func(d *Device)

// Device is an in-memory accelerator: a 64K register file, a FIFO per
// stream id and the command/status registers.
type Device struct {
	// OnStart defaults to setting the done bit of the status register.
	OnStart StartFunc

	lock   sync.Mutex
	regs   [1 << 16]byte
	fifos  map[uint8][]byte
	out    bytes.Buffer
	parser Parser
	closed bool
}

// NewDevice creates a simulated device.
func NewDevice() *Device {
	return &Device{fifos: make(map[uint8][]byte)}
}

// Opener returns a comm.Opener handing out d.
func (d *Device) Opener() comm.Opener {
	return func() (comm.Transport, error) {
		return d, nil
	}
}

// Write implements io.Writer, consuming request frames.
func (d *Device) Write(p []byte) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return 0, errors.New("device closed")
	}
	for _, b := range p {
		if tx := d.parser.Parse(b); tx != nil {
			d.handle(tx)
		}
	}
	return len(p), nil
}

// Read implements io.Reader, returning pending response bytes.
func (d *Device) Read(p []byte) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(p) == 0 {
		return 0, nil
	}
	if d.out.Len() == 0 {
		return 0, ErrNoData
	}
	return d.out.Read(p)
}

// ClearBuffers implements comm.Transport.
func (d *Device) ClearBuffers() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.out.Reset()
	d.parser.Reset()
	return nil
}

// Close implements io.Closer.
func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closed = true
	return nil
}

// Register returns the value of a register.
func (d *Device) Register(address uint16) byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.regs[address]
}

// SetRegisters writes values starting at address.
func (d *Device) SetRegisters(address uint16, values ...byte) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.setRegs(address, values)
}

// PushRecords appends records to FIFO id.
func (d *Device) PushRecords(id uint8, recs ...comm.Record) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.pushRecords(id, recs)
}

// PushRecordsLocked is PushRecords for use inside a StartFunc.
func (d *Device) PushRecordsLocked(id uint8, recs ...comm.Record) {
	d.pushRecords(id, recs)
}

// SetRegistersLocked is SetRegisters for use inside a StartFunc.
func (d *Device) SetRegistersLocked(address uint16, values ...byte) {
	d.setRegs(address, values)
}

// RegistersLocked returns a copy of n registers from address, for use
// inside a StartFunc.
func (d *Device) RegistersLocked(address uint16, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = d.regs[address+uint16(i)]
	}
	return b
}

func (d *Device) pushRecords(id uint8, recs []comm.Record) {
	for _, r := range recs {
		d.fifos[id] = append(d.fifos[id], r.Bytes()...)
	}
}

func (d *Device) setRegs(address uint16, values []byte) {
	for i, v := range values {
		d.regs[address+uint16(i)] = v
	}
}

func (d *Device) handle(tx comm.Transaction) {
	switch tx := tx.(type) {
	case comm.ContiguousRead:
		glog.V(4).Infof("sim: read %d bytes at %d", tx.NumBytes, tx.Address)
		d.out.Write(d.RegistersLocked(tx.Address, int(tx.NumBytes)))
	case comm.ContiguousWrite:
		glog.V(4).Infof("sim: write % x at %d", tx.Payload, tx.Address)
		d.setRegs(tx.Address, tx.Payload)
		if tx.Address <= comm.CommandRegAddress && int(tx.Address)+len(tx.Payload) > int(comm.CommandRegAddress) &&
			d.regs[comm.CommandRegAddress] == comm.CmdStart {
			d.start()
		}
	case comm.FIFORead:
		fifo := d.fifos[tx.ID]
		n := int(tx.NumBytes)
		if n > len(fifo) {
			n = len(fifo)
		}
		glog.V(4).Infof("sim: FIFO %d read %d/%d bytes", tx.ID, n, tx.NumBytes)
		d.out.Write(fifo[:n])
		d.fifos[tx.ID] = fifo[n:]
	}
}

func (d *Device) start() {
	if d.OnStart != nil {
		d.OnStart(d)
		return
	}
	d.regs[comm.StatusRegAddress] |= comm.StatusDoneBit
}
