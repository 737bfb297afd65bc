package serial

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bugst "go.bug.st/serial"
)

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
		valid  bool
	}{
		{"default", func(c *Config) {}, true},
		{"7E2", func(c *Config) { c.DataBits, c.Parity, c.StopBits = 7, "even", "2" }, true},
		{"no port", func(c *Config) { c.Name = "" }, false},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }, false},
		{"9 data bits", func(c *Config) { c.DataBits = 9 }, false},
		{"unknown parity", func(c *Config) { c.Parity = "both" }, false},
		{"unknown stop bits", func(c *Config) { c.StopBits = "3" }, false},
		{"hardware flow control", func(c *Config) { c.FlowControl = "hardware" }, false},
		{"no timeout", func(c *Config) { c.Timeout = 0 }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.modify(&c)
			if tc.valid {
				require.NoError(t, c.Validate())
			} else {
				require.Error(t, c.Validate())
			}
		})
	}
}

func TestConfigMode(t *testing.T) {
	c := DefaultConfig()
	mode, err := c.Mode()
	require.NoError(t, err)
	require.Equal(t, &bugst.Mode{BaudRate: 115200, DataBits: 8, Parity: bugst.NoParity, StopBits: bugst.OneStopBit}, mode)

	c.Parity, c.StopBits = "odd", "1.5"
	mode, err = c.Mode()
	require.NoError(t, err)
	require.Equal(t, bugst.OddParity, mode.Parity)
	require.Equal(t, bugst.OnePointFiveStopBits, mode.StopBits)

	c.FlowControl = "software"
	_, err = c.Mode()
	require.Error(t, err)
}

func TestOpenInvalidConfig(t *testing.T) {
	c := DefaultConfig()
	c.BaudRate = -1
	tr, err := Opener(c)()
	require.Error(t, err)
	require.Nil(t, tr)
}

// fakePort serves queued reads, the rest of bugst.Port is unused.
type fakePort struct {
	bugst.Port

	reads   [][]byte
	written []byte
	resets  []string
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, nil
	}
	n := copy(b, p.reads[0])
	p.reads = p.reads[1:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets = append(p.resets, "input")
	return nil
}

func (p *fakePort) ResetOutputBuffer() error {
	p.resets = append(p.resets, "output")
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestPort(t *testing.T) {
	fake := &fakePort{reads: [][]byte{{1, 2}}}
	p := &Port{port: fake, timeout: time.Second}

	n, err := p.Write([]byte{0x01, 0x81, 0x00})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{0x01, 0x81, 0x00}, fake.written)

	buf := make([]byte, 4)
	n, err = p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, buf[:n])

	n, err = p.Read(buf)
	require.Zero(t, n)
	require.True(t, os.IsTimeout(err))
	var timeout interface{ Timeout() bool }
	require.True(t, errors.As(err, &timeout))

	n, err = p.Read(nil)
	require.Zero(t, n)
	require.NoError(t, err)

	require.NoError(t, p.ClearBuffers())
	require.Equal(t, []string{"input", "output"}, fake.resets)
	require.NoError(t, p.Close())
	require.True(t, fake.closed)
}
