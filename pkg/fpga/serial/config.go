package serial

import (
	"fmt"
	"time"

	bugst "go.bug.st/serial"
)

// Config describes how to open and configure the serial port.
type Config struct {
	Name        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	DataBits    int           `yaml:"data_bits"`
	Parity      string        `yaml:"parity"`
	StopBits    string        `yaml:"stop_bits"`
	FlowControl string        `yaml:"flow_control"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultConfig is 115200 8N1, no flow control, 5s timeout.
func DefaultConfig() Config {
	return Config{
		Name:        "/dev/ttyUSB0",
		BaudRate:    115200,
		DataBits:    8,
		Parity:      "none",
		StopBits:    "1",
		FlowControl: "none",
		Timeout:     5 * time.Second,
	}
}

var (
	parities = map[string]bugst.Parity{
		"none":  bugst.NoParity,
		"odd":   bugst.OddParity,
		"even":  bugst.EvenParity,
		"mark":  bugst.MarkParity,
		"space": bugst.SpaceParity,
	}
	stopBits = map[string]bugst.StopBits{
		"1":   bugst.OneStopBit,
		"1.5": bugst.OnePointFiveStopBits,
		"2":   bugst.TwoStopBits,
	}
)

// Validate checks the configuration without opening the port.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("serial: port name required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("serial: invalid baud rate %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("serial: invalid data bits %d", c.DataBits)
	}
	if _, ok := parities[c.Parity]; !ok {
		return fmt.Errorf("serial: unknown parity %q", c.Parity)
	}
	if _, ok := stopBits[c.StopBits]; !ok {
		return fmt.Errorf("serial: unknown stop bits %q", c.StopBits)
	}
	// the driver never enables hardware or software flow control
	if c.FlowControl != "none" {
		return fmt.Errorf("serial: unsupported flow control %q", c.FlowControl)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("serial: timeout must be positive")
	}
	return nil
}

// Mode converts the configuration to a port mode.
func (c *Config) Mode() (*bugst.Mode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &bugst.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		Parity:   parities[c.Parity],
		StopBits: stopBits[c.StopBits],
	}, nil
}
