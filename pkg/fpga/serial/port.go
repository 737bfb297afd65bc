// Package serial provides the serial port Transport for FPGA sessions.
package serial

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	bugst "go.bug.st/serial"

	"github.com/robotalks/hostcomm/pkg/fpga/comm"
)

type timeoutError struct {
	timeout time.Duration
}

func (e *timeoutError) Error() string   { return fmt.Sprintf("serial read timeout after %v", e.timeout) }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

// Port is an opened serial port implementing comm.Transport.
type Port struct {
	port    bugst.Port
	timeout time.Duration
}

// Open opens and configures the serial port.
func Open(conf Config) (*Port, error) {
	mode, err := conf.Mode()
	if err != nil {
		return nil, err
	}
	port, err := bugst.Open(conf.Name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", conf.Name, err)
	}
	if err = port.SetReadTimeout(conf.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", conf.Name, err)
	}
	glog.V(2).Infof("opened %s at %d baud", conf.Name, conf.BaudRate)
	return &Port{port: port, timeout: conf.Timeout}, nil
}

// Opener returns a comm.Opener for conf.
func Opener(conf Config) comm.Opener {
	return func() (comm.Transport, error) {
		p, err := Open(conf)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Read implements io.Reader. An expired timeout is reported as an error
// satisfying os.IsTimeout.
func (p *Port) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := p.port.Read(b)
	if err == nil && n == 0 {
		return 0, &timeoutError{timeout: p.timeout}
	}
	return n, err
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// ClearBuffers implements comm.Transport.
func (p *Port) ClearBuffers() error {
	if err := p.port.ResetInputBuffer(); err != nil {
		return err
	}
	return p.port.ResetOutputBuffer()
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}
